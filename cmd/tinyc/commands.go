package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/repr"
	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/kartiknair/tinyc/pkg/gen"
	llvmgen "github.com/kartiknair/tinyc/pkg/gen/llvm"
	"github.com/kartiknair/tinyc/pkg/lexer"
	"github.com/kartiknair/tinyc/pkg/parser"
	"github.com/urfave/cli/v2"
)

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write to `FILE` instead of standard output.",
	}
}

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "Print the token stream of a source file.",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			m, err := load(c)
			if err != nil {
				return err
			}
			if err := lexer.Lex(m); err != nil {
				return fail(m, err)
			}
			for _, t := range m.Tokens {
				fmt.Fprintf(c.App.Writer, "%s\t%s\n", t.Pos, t)
			}
			return nil
		},
	}
}

func astCommand() *cli.Command {
	return &cli.Command{
		Name:      "ast",
		Usage:     "Print the syntax tree of a source file.",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Dump the Go structures, positions included.",
			},
		},
		Action: func(c *cli.Context) error {
			m, err := load(c)
			if err != nil {
				return err
			}
			if err := parse(m); err != nil {
				return fail(m, err)
			}
			if c.Bool("raw") {
				fmt.Fprintln(c.App.Writer, repr.String(m.AST.Root, repr.Indent("  "), repr.OmitEmpty(true)))
				return nil
			}
			fmt.Fprintln(c.App.Writer, m.AST)
			return nil
		},
	}
}

func irCommand() *cli.Command {
	return &cli.Command{
		Name:      "ir",
		Usage:     "Lower a source file to textual LLVM IR.",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			outputFlag(),
			&cli.StringFlag{
				Name:  "triple",
				Usage: "Target triple recorded in the module.",
			},
		},
		Action: func(c *cli.Context) error {
			m, err := load(c)
			if err != nil {
				return err
			}
			ir, err := lower(m, c.String("triple"))
			if err != nil {
				return fail(m, err)
			}
			return output(c, ir)
		},
	}
}

func cCommand() *cli.Command {
	return &cli.Command{
		Name:      "c",
		Usage:     "Print a source file back out as C.",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{outputFlag()},
		Action: func(c *cli.Context) error {
			m, err := load(c)
			if err != nil {
				return err
			}
			if err := parse(m); err != nil {
				return fail(m, err)
			}
			src, err := gen.C(m)
			if err != nil {
				return fail(m, err)
			}
			return output(c, src)
		},
	}
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Build a source file into an executable.",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "a.out",
				Usage:   "Name of the executable.",
			},
		},
		Action: func(c *cli.Context) error {
			m, err := load(c)
			if err != nil {
				return err
			}
			ir, err := lower(m, "")
			if err != nil {
				return fail(m, err)
			}
			return compile(c, ir, c.String("output"))
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Build a source file and run it. Extra arguments go to the program.",
		ArgsUsage: "FILE [ARGS...]",
		Action: func(c *cli.Context) error {
			m, err := load(c)
			if err != nil {
				return err
			}
			ir, err := lower(m, "")
			if err != nil {
				return fail(m, err)
			}

			dir, err := os.MkdirTemp("", "tinyc-*")
			if err != nil {
				return cli.Exit(fmt.Sprintf("cannot create temp directory: %s", err), 1)
			}
			defer os.RemoveAll(dir)

			exe := filepath.Join(dir, "main.out")
			if err := compile(c, ir, exe); err != nil {
				return err
			}

			cmd := exec.CommandContext(c.Context, exe, c.Args().Tail()...)
			cmd.Stdin = os.Stdin
			cmd.Stdout = c.App.Writer
			cmd.Stderr = c.App.ErrWriter
			if err := cmd.Run(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					return cli.Exit("", exitErr.ExitCode())
				}
				return cli.Exit(fmt.Sprintf("cannot run %s: %s", exe, err), 1)
			}
			return nil
		},
	}
}

// load reads the file named by the first argument into a module.
func load(c *cli.Context) (*ast.Module, error) {
	path := c.Args().First()
	if path == "" {
		return nil, cli.Exit("source file not provided", 2)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("cannot read source file: %s", err), 1)
	}
	return ast.NewModule(path, string(source)), nil
}

func parse(m *ast.Module) error {
	start := time.Now()
	if err := lexer.Lex(m); err != nil {
		return err
	}
	if err := parser.ParseModule(m); err != nil {
		return err
	}
	log.Infof("%s: lexing and parsing took %s", m.Path, time.Since(start))
	return nil
}

func lower(m *ast.Module, triple string) (string, error) {
	if err := parse(m); err != nil {
		return "", err
	}
	start := time.Now()
	ir, err := gen.LLVM(m, llvmgen.Options{TargetTriple: triple})
	if err != nil {
		return "", err
	}
	log.Infof("%s: generating LLVM IR took %s", m.Path, time.Since(start))
	return ir, nil
}

// fail turns a pipeline error into an exit error that carries the rendered
// diagnostic.
func fail(m *ast.Module, err error) error {
	code := 1
	var devErr *diag.DevError
	if errors.As(err, &devErr) {
		code = 3
	}
	return cli.Exit(strings.TrimRight(diag.NewReporter(m).Format(err), "\n"), code)
}

func output(c *cli.Context, text string) error {
	path := c.String("output")
	if path == "" {
		_, err := fmt.Fprint(c.App.Writer, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return cli.Exit(fmt.Sprintf("cannot write %s: %s", path, err), 1)
	}
	return nil
}

// compile pipes ir into the configured C compiler.
func compile(c *cli.Context, ir, exe string) error {
	cc := c.String("cc")
	cmd := exec.CommandContext(c.Context, cc, "-x", "ir", "-o", exe, "-")
	cmd.Stdin = strings.NewReader(ir)
	cmd.Stdout = c.App.Writer
	cmd.Stderr = c.App.ErrWriter
	log.Debugf("running %s", cmd)

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return cli.Exit(fmt.Sprintf("%s failed to compile the IR: %s", cc, err), 1)
	}
	log.Infof("%s took %s to compile and link", cc, time.Since(start))
	return nil
}
