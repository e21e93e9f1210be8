// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package part implements a command to decompose
// the diversity of a metacommunity
// into alpha, beta, and gamma components.
package part

import (
	"fmt"
	"os"
	"runtime"

	"github.com/js-arias/command"
	"github.com/js-arias/diversity/cmd/diversity/profile"
	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/coverage"
	"github.com/js-arias/diversity/partition"
	"github.com/js-arias/diversity/tsallis"
)

var Command = &command.Command{
	Usage: `part [--estimator <name>] [--coverage <name>]
	[-q|--orders <numbers>] [--cpu <number>] <abundance-file>`,
	Short: "decompose metacommunity diversity",
	Long: `
Command part reads an abundance file as a weighted metacommunity and
decomposes its diversity into gamma (the pooled community), alpha (the site
weighted mean), and beta (the among site component), at a set of orders q.

The argument of the command is the name of a TSV file with the fields "site",
"species", and "abundance", and an optional field "weight" for the site
weights.

The decomposition is additive in entropy space at order one, and
multiplicative in diversity space at any order: gamma diversity is the
product of alpha and beta diversity, through the Hill transform.

By default, orders 0, 0.5, 1, and 2 will be used. Use the flag -q, or
--orders, with a comma separated list of numbers, to change them. The flags
--estimator and --coverage select the entropy and coverage estimators, as in
the profile command.

By default, all available CPUs will be used in the processing. Set --cpu flag
to use a different number of CPUs.

Results will be written to the standard output as a TSV table with one row
per order and component:

	- q, the order of the estimation
	- component, gamma, alpha, or beta
	- estimator, the estimator actually used
	- entropy, the estimated Tsallis entropy
	- diversity, the estimated Hill number
	- notice, any diagnostic
	`,
	SetFlags: setFlags,
	Run:      run,
}

var estFlag string
var covFlag string
var ordFlag string
var numCPU int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&estFlag, "estimator", "", "")
	c.Flags().StringVar(&covFlag, "coverage", "", "")
	c.Flags().StringVar(&ordFlag, "orders", "0,0.5,1,2", "")
	c.Flags().StringVar(&ordFlag, "q", "0,0.5,1,2", "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.GOMAXPROCS(0), "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting abundance file")
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

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	m, err := community.ReadTSV(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("while reading file %q: %v", args[0], err)
	}

	prof, err := partition.Profile(m, qs, o, numCPU)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout(), "q\tcomponent\testimator\tentropy\tdiversity\tnotice\n")
	for _, d := range prof {
		write(c, "gamma", d.GammaEntropy, d.GammaDiversity)
		write(c, "alpha", d.AlphaEntropy, d.AlphaDiversity)
		write(c, "beta", d.BetaEntropy, d.BetaDiversity)
	}
	return nil
}

func write(c *command.Command, comp string, h, d community.Result) {
	fmt.Fprintf(c.Stdout(), "%.6g\t%s\t%s\t%.6f\t%.6f\t%s\n", h.Order, comp, h.Estimator, h.Value, d.Value, h.Notice)
}
