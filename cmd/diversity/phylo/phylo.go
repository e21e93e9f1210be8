// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package phylo implements a command to estimate
// phylogenetic diversity
// of each site in an abundance file
// over a time calibrated tree.
package phylo

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/diversity/cmd/diversity/profile"
	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/coverage"
	"github.com/js-arias/diversity/phylodiv"
	"github.com/js-arias/diversity/tsallis"
	"github.com/js-arias/timetree"
)

var Command = &command.Command{
	Usage: `phylo [--tree <tree-name>] [--estimator <name>]
	[-q|--orders <numbers>] <tree-file> <abundance-file>`,
	Short: "estimate phylogenetic diversity",
	Long: `
Command phylo reads a time calibrated tree and an abundance file, and reports
the phylogenetic entropy and diversity of each site at a set of orders q: the
tree is sliced at its node ages, the entropy of the pooled clade abundances
is estimated per slice, and the slices are combined as a branch length
weighted mean.

The first argument of the command is the name of a TSV tree file, as used by
the timetree package. If the file contains several trees, the flag --tree
selects one by name; by default the first tree is used. The second argument
is a TSV abundance file with the fields "site", "species", and "abundance";
the species must be terminals of the tree.

By default, orders 0, 0.5, 1, and 2 will be used. Use the flag -q, or
--orders, with a comma separated list of numbers, to change them. The flag
--estimator selects the per slice entropy estimator, as in the profile
command.

Results will be written to the standard output as a TSV table with one row
per site and order:

	- site, the name of the site
	- tree, the name of the tree
	- q, the order of the estimation
	- estimator, the estimator actually used
	- entropy, the phylogenetic Tsallis entropy
	- diversity, the phylogenetic Hill number
	- notice, any diagnostic for the sample
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeFlag string
var estFlag string
var covFlag string
var ordFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeFlag, "tree", "", "")
	c.Flags().StringVar(&estFlag, "estimator", "", "")
	c.Flags().StringVar(&covFlag, "coverage", "", "")
	c.Flags().StringVar(&ordFlag, "orders", "0,0.5,1,2", "")
	c.Flags().StringVar(&ordFlag, "q", "0,0.5,1,2", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting tree file and abundance file")
	}

	var o tsallis.Options
	var err error
	if o.Estimator, err = tsallis.Parse(estFlag); err != nil {
		return err
	}
	if o.Coverage, err = coverage.Parse(covFlag); err != nil {
		return err
	}
	qs, err := profile.ParseOrders(ordFlag)
	if err != nil {
		return err
	}

	t, err := readTree(args[0])
	if err != nil {
		return err
	}
	m, err := readCommunities(args[1])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout(), "site\ttree\tq\testimator\tentropy\tdiversity\tnotice\n")
	for i := 0; i < m.Len(); i++ {
		s := m.Site(i)
		for _, q := range qs {
			r, err := phylodiv.Entropy(t, s, q, o)
			if err != nil {
				return err
			}
			d := tsallis.Expq(r.Value, q)
			fmt.Fprintf(c.Stdout(), "%s\t%s\t%.6g\t%s\t%.6f\t%.6f\t%s\n", r.Community, t.Name(), q, r.Estimator, r.Value, d, r.Notice)
		}
	}
	return nil
}

func readTree(name string) (*timetree.Tree, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tc, err := timetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}

	tn := treeFlag
	if tn == "" {
		names := tc.Names()
		if len(names) == 0 {
			return nil, fmt.Errorf("file %q: no trees defined", name)
		}
		tn = names[0]
	}
	t := tc.Tree(tn)
	if t == nil {
		return nil, fmt.Errorf("file %q: tree %q not defined", name, tn)
	}
	return t, nil
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
