// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package accumcmd implements a command to predict
// diversity accumulation curves
// for each site in an abundance file.
package accumcmd

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/diversity/accum"
	"github.com/js-arias/diversity/community"
)

var Command = &command.Command{
	Usage: `accum [--levels <numbers>] [--coverage <number>]
	[-q <number>] [--reps <number>] [--seed <number>]
	[--cpu <number>] <abundance-file>`,
	Short: "predict diversity accumulation curves",
	Long: `
Command accum reads an abundance file and predicts the expected diversity of
each site at a set of sample sizes, by exact rarefaction below the observed
size and by asymptotic anchored extrapolation above it.

The argument of the command is the name of a TSV file with the fields "site",
"species", and "abundance", and an optional field "weight".

The flag --levels takes a comma separated list of sample sizes. If no level
is given, sizes from 1 to twice the observed sample size will be used.
Alternatively, the flag --coverage takes a sample coverage fraction in (0,1)
and translates it into a sample size per site. Extrapolation much beyond two
or three times the observed sample size is known to be statistically
unreliable; requested levels are never clamped.

The flag -q sets the order of the diversity (default 0). The flag --reps sets
the number of bootstrap repetitions used for the standard error of the
extrapolated values (default 200); the flag --seed sets the random seed, so
runs are reproducible.

By default, all available CPUs will be used in the processing. Set --cpu flag
to use a different number of CPUs.

Results will be written to the standard output as a TSV table with one row
per site and level:

	- site, the name of the site
	- q, the order of the diversity
	- level, the sample size of the prediction
	- method, interpolation or extrapolation
	- diversity, the expected Hill number
	- stdErr, the bootstrap standard error
		(extrapolated levels only)
	- notice, any diagnostic for the sample
	`,
	SetFlags: setFlags,
	Run:      run,
}

var levelsFlag string
var covFlag float64
var qFlag float64
var repsFlag int
var seedFlag uint64
var numCPU int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&levelsFlag, "levels", "", "")
	c.Flags().Float64Var(&covFlag, "coverage", 0, "")
	c.Flags().Float64Var(&qFlag, "q", 0, "")
	c.Flags().IntVar(&repsFlag, "reps", 200, "")
	c.Flags().Uint64Var(&seedFlag, "seed", 1, "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.GOMAXPROCS(0), "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting abundance file")
	}

	m, err := readCommunities(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout(), "site\tq\tlevel\tmethod\tdiversity\tstdErr\tnotice\n")
	for i := 0; i < m.Len(); i++ {
		s := m.Site(i)
		a, err := accum.New(s, accum.Options{})
		if err != nil {
			return err
		}

		levels, err := siteLevels(a)
		if err != nil {
			return err
		}
		curve := a.Curve(qFlag, levels, repsFlag, seedFlag, numCPU)
		for j, r := range curve {
			fmt.Fprintf(c.Stdout(), "%s\t%.6g\t%d\t%s\t%.6f\t%.6f\t%s\n", r.Community, qFlag, levels[j], r.Estimator, r.Value, r.StdErr, r.Notice)
		}
	}
	return nil
}

func siteLevels(a *accum.Accumulator) ([]int, error) {
	if covFlag > 0 {
		lv, err := a.LevelAtCoverage(covFlag)
		if err != nil {
			return nil, err
		}
		return []int{lv}, nil
	}
	if levelsFlag == "" {
		levels := make([]int, 0, 2*a.N())
		for lv := 1; lv <= 2*a.N(); lv++ {
			levels = append(levels, lv)
		}
		return levels, nil
	}

	var levels []int
	for _, f := range strings.Split(levelsFlag, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		lv, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("flag --levels: %v", err)
		}
		if lv < 1 {
			return nil, fmt.Errorf("flag --levels: invalid level %d", lv)
		}
		levels = append(levels, lv)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("flag --levels: no levels defined")
	}
	return levels, nil
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
