// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package cover implements a command to report
// the sample coverage of each site
// in an abundance file.
package cover

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/coverage"
)

var Command = &command.Command{
	Usage: "coverage [--estimator <name>] <abundance-file>",
	Short: "report the sample coverage of each site",
	Long: `
Command coverage reads an abundance file and reports the estimated sample
coverage of each site: the probability mass of the population already
represented by the observed species.

The argument of the command is the name of a TSV file with the fields "site",
"species", and "abundance", and an optional field "weight".

By default, the Zhang-Huang estimator will be used. Use the flag --estimator
to select another estimator. Valid values are:

	chao
	good
	turing
	zhang-huang	(default)

Results will be written to the standard output as a TSV table with the
following columns:

	- site, the name of the site
	- n, the sample size
	- richness, the number of observed species
	- coverage, the estimated sample coverage
	- notice, any diagnostic for the sample

A sample in which every species is observed once has a coverage of zero; it
will be reported with a diagnostic instead of aborting the run.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var estFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&estFlag, "estimator", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting abundance file")
	}

	est, err := coverage.Parse(estFlag)
	if err != nil {
		return err
	}

	m, err := readCommunities(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout(), "site\tn\trichness\tcoverage\tnotice\n")
	for i := 0; i < m.Len(); i++ {
		s := m.Site(i)
		cov, notice := coverage.Estimate(s.Counts(), est)
		fmt.Fprintf(c.Stdout(), "%s\t%.0f\t%d\t%.6f\t%s\n", s.Name(), s.N(), s.Richness(), cov, notice)
	}
	return nil
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
