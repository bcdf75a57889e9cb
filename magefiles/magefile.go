//go:build mage

// Package main contains Mage build targets for pdf-ocr developer tooling.
package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories a processing run expects.
var projectDirs = []string{
	"output",
	"output/images",
	"archive",
}

// Init creates the working directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "pdf-ocr"
	cmdPkg  = "./cmd/pdf-ocr"
)

// Build compiles the CLI binary into bin/, stamping the version from git.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}

	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}

	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// All initializes directories, builds the binary, and runs the tests.
func All() {
	mg.SerialDeps(Init, Build, Test)
}

// Doctor checks for the external tools the pipeline shells out to.
func Doctor() error {
	report := func(bin, hint string) bool {
		if _, err := exec.LookPath(bin); err != nil {
			fmt.Printf("missing  %-10s %s\n", bin, hint)
			return false
		}
		fmt.Printf("found    %s\n", bin)
		return true
	}

	haveTesseract := report("tesseract", "OCR engine (apt install tesseract-ocr tesseract-ocr-chi-sim)")
	havePdftoppm := report("pdftoppm", "preferred renderer (apt install poppler-utils)")
	haveMutool := report("mutool", "fallback renderer (apt install mupdf-tools)")

	if !haveTesseract {
		return fmt.Errorf("tesseract is required")
	}
	if !havePdftoppm && !haveMutool {
		return fmt.Errorf("no PDF renderer: install poppler-utils or mupdf-tools")
	}
	return nil
}

// Stats prints project metrics: Go production and test line counts.
func Stats() error {
	var prod, test int
	for _, root := range []string{"cmd", "internal", "pkg", "magefiles"} {
		p, t, err := countGoLines(root)
		if err != nil {
			return err
		}
		prod += p
		test += t
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", test)
	return nil
}

// countGoLines counts non-blank lines in Go files under root, split into
// production and test files.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}
