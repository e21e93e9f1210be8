// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Diversity is a tool for estimating biodiversity indices
// from species abundance data,
// correcting for unseen species.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/diversity/cmd/diversity/accumcmd"
	"github.com/js-arias/diversity/cmd/diversity/cover"
	"github.com/js-arias/diversity/cmd/diversity/part"
	"github.com/js-arias/diversity/cmd/diversity/phylo"
	"github.com/js-arias/diversity/cmd/diversity/profile"
)

var app = &command.Command{
	Usage: "diversity <command> [<argument>...]",
	Short: "a tool for estimating biodiversity indices",
}

func init() {
	app.Add(accumcmd.Command)
	app.Add(cover.Command)
	app.Add(part.Command)
	app.Add(phylo.Command)
	app.Add(profile.Command)
}

func main() {
	app.Main()
}
