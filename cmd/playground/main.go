package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alecthomas/repr"
	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/kartiknair/tinyc/pkg/gen"
	llvmgen "github.com/kartiknair/tinyc/pkg/gen/llvm"
)

func main() {
	code := `
enum Color { Red, Green, Blue }

int main() {
	int total = 0;
	for (int i = 0; i < 10; i = i + 1) {
		if (i % 2 == 0) { continue; }
		total = total + i;
	}

	int c = Color.Red;
	switch (total) {
		case 0:
			c = Color.Green;
			break;
		case 25:
		default:
			c = Color.Blue;
	}
	return c;
}
`
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err.Error())
	}

	m := ast.NewModule(filepath.Join(cwd, "main.c"), code)

	if err := gen.Parse(m); err != nil {
		fmt.Print(diag.NewReporter(m).Format(err))
		os.Exit(1)
	}
	repr.Println(m.Tokens[:8])
	fmt.Println(m.AST)

	gennedLLVM, err := gen.LLVM(m, llvmgen.Options{})
	if err != nil {
		fmt.Print(diag.NewReporter(m).Format(err))
		os.Exit(1)
	}
	fmt.Println(gennedLLVM)

	gennedC, err := gen.C(m)
	if err != nil {
		fmt.Print(diag.NewReporter(m).Format(err))
		os.Exit(1)
	}
	fmt.Println(gennedC)
}
