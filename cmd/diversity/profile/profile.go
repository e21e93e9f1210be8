// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package profile implements a command to estimate
// entropy and diversity profiles
// of each site in an abundance file.
package profile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/coverage"
	"github.com/js-arias/diversity/tsallis"
	"github.com/js-arias/diversity/unveil"
)

var Command = &command.Command{
	Usage: `profile [--estimator <name>] [--coverage <name>]
	[--unveiling <name>] [-q|--orders <numbers>] <abundance-file>`,
	Short: "estimate entropy and diversity profiles",
	Long: `
Command profile reads an abundance file and reports the estimated Tsallis
entropy and Hill number diversity of each site, at a set of orders q.

The argument of the command is the name of a TSV file with the fields "site",
"species", and "abundance", and an optional field "weight".

By default, orders 0, 0.5, 1, and 2 will be used. Use the flag -q, or
--orders, with a comma separated list of numbers, to change them.

By default, the unveiled jackknife estimator will be used. Use the flag
--estimator to select another estimator. Valid values are:

	naive
	chao-shen
	zhang-huang
	marcon-zhang
	unveil-c
	unveil-ic
	unveil-j	(default)

The flag --coverage selects the coverage estimator (chao, good, turing, or
zhang-huang), and the flag --unveiling the shape of the unseen species tail
(none, uniform, or geometric).

Results will be written to the standard output as a TSV table with one row
per site and order:

	- site, the name of the site
	- q, the order of the estimation
	- estimator, the estimator actually used,
		after any fallback
	- coverage, the sample coverage used by the estimation
	- entropy, the estimated Tsallis entropy
	- diversity, the estimated Hill number
	- notice, any diagnostic for the sample

A degenerate site is reported with a NaN value and a diagnostic; it does not
abort the estimation of the other sites.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var estFlag string
var covFlag string
var unvFlag string
var ordFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&estFlag, "estimator", "", "")
	c.Flags().StringVar(&covFlag, "coverage", "", "")
	c.Flags().StringVar(&unvFlag, "unveiling", "", "")
	c.Flags().StringVar(&ordFlag, "orders", "0,0.5,1,2", "")
	c.Flags().StringVar(&ordFlag, "q", "0,0.5,1,2", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting abundance file")
	}

	o, err := options()
	if err != nil {
		return err
	}
	qs, err := ParseOrders(ordFlag)
	if err != nil {
		return err
	}

	m, err := readCommunities(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout(), "site\tq\testimator\tcoverage\tentropy\tdiversity\tnotice\n")
	for i := 0; i < m.Len(); i++ {
		s := m.Site(i)
		for _, q := range qs {
			r, err := tsallis.Entropy(s, q, o)
			if err != nil {
				return err
			}
			d := tsallis.Expq(r.Value, q)
			fmt.Fprintf(c.Stdout(), "%s\t%.6g\t%s\t%.6f\t%.6f\t%.6f\t%s\n", r.Community, q, r.Estimator, r.Coverage, r.Value, d, r.Notice)
		}
	}
	return nil
}

func options() (tsallis.Options, error) {
	var o tsallis.Options
	var err error
	if o.Estimator, err = tsallis.Parse(estFlag); err != nil {
		return o, err
	}
	if o.Coverage, err = coverage.Parse(covFlag); err != nil {
		return o, err
	}
	if o.Unveiling, err = unveil.ParseUnveiling(unvFlag); err != nil {
		return o, err
	}
	return o, nil
}

// ParseOrders reads a comma separated list
// of non-negative orders.
func ParseOrders(s string) ([]float64, error) {
	var qs []float64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		q, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("flag --orders: %v", err)
		}
		if q < 0 {
			return nil, fmt.Errorf("flag --orders: negative order %v", q)
		}
		qs = append(qs, q)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("flag --orders: no orders defined")
	}
	return qs, nil
}

func readCommunities(name string) (*community.Metacommunity, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := community.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return m, nil
}
