package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/urfave/cli/v2"
)

var log = commonlog.GetLogger("tinyc.cli")

func newApp() *cli.App {
	return &cli.App{
		Name:  "tinyc",
		Usage: "Compile a small C-like language to LLVM IR.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log timings and every lowered construct.",
			},
			&cli.StringFlag{
				Name:    "cc",
				Value:   "clang",
				EnvVars: []string{"TINYC_CC"},
				Usage:   "Compiler used to turn IR into an executable.",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Print diagnostics without ANSI colors.",
			},
		},
		Before: func(c *cli.Context) error {
			verbosity := 0
			if c.Bool("verbose") {
				verbosity = 2
			}
			commonlog.Configure(verbosity, nil)

			if c.Bool("no-color") {
				color.NoColor = true
			}
			return nil
		},
		Commands: []*cli.Command{
			tokensCommand(),
			astCommand(),
			irCommand(),
			cCommand(),
			buildCommand(),
			runCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
