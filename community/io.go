// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package community

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// ReadTSV reads a metacommunity from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - site, the name of the sampled site
//   - species, the name of the recorded species
//   - abundance, the number of individuals
//     (or the probability)
//     of the species at the site
//
// An optional field "weight" sets the site weight;
// the first defined value per site wins
// and the default weight is one.
//
// Here is an example file:
//
//	site	species	abundance	weight
//	creek	Tapirus terrestris	10	2
//	creek	Panthera onca	2	2
//	ridge	Tapirus terrestris	1	1
//	ridge	Mazama americana	8	1
func ReadTSV(r io.Reader) (*Metacommunity, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(h))
		fields[h] = i
	}
	for _, h := range []string{"site", "species", "abundance"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	type site struct {
		name   string
		weight float64
		abund  map[string]float64
	}
	var sites []*site
	byName := make(map[string]*site)
	spSet := make(map[string]bool)
	var species []string

	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		sn := canon(row[fields["site"]])
		if sn == "" {
			continue
		}
		sp := canon(row[fields["species"]])
		if sp == "" {
			continue
		}

		f := "abundance"
		v, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}

		s, ok := byName[sn]
		if !ok {
			s = &site{
				name:   sn,
				weight: 1,
				abund:  make(map[string]float64),
			}
			byName[sn] = s
			sites = append(sites, s)

			if i, ok := fields["weight"]; ok && row[i] != "" {
				w, err := strconv.ParseFloat(row[i], 64)
				if err != nil {
					return nil, fmt.Errorf("on row %d: field %q: %v", ln, "weight", err)
				}
				s.weight = w
			}
		}
		s.abund[sp] += v
		if !spSet[sp] {
			spSet[sp] = true
			species = append(species, sp)
		}
	}

	slices.Sort(species)
	m, err := NewMetacommunity(species)
	if err != nil {
		return nil, err
	}
	for _, s := range sites {
		counts := make([]float64, len(species))
		for i, sp := range species {
			counts[i] = s.abund[sp]
		}
		c, err := New(s.name, species, counts)
		if err != nil {
			return nil, err
		}
		if err := m.Add(c, s.weight); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// TSV writes a metacommunity as a TSV file.
func (m *Metacommunity) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{"site", "species", "abundance", "weight"}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for j, c := range m.sites {
		sp := m.species
		if sp == nil {
			sp = c.species
		}
		for i, v := range c.counts {
			if v == 0 {
				continue
			}
			name := strconv.Itoa(i)
			if sp != nil {
				name = sp[i]
			}
			row := []string{
				c.name,
				name,
				strconv.FormatFloat(v, 'g', -1, 64),
				strconv.FormatFloat(m.weights[j], 'g', -1, 64),
			}
			if err := tab.Write(row); err != nil {
				return fmt.Errorf("when writing data: %v", err)
			}
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
