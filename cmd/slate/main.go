package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"slate/internal/compiler"
	"slate/internal/errors"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: slate <file.sl> [output-dir]")
		os.Exit(1)
	}

	startTime := time.Now()
	path := os.Args[1]
	outDir := "."
	if len(os.Args) > 2 {
		outDir = os.Args[2]
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		os.Exit(1)
	}

	result, compileErrors := compiler.CompileToDir(filepath.Base(path), string(source), outDir)

	if len(compileErrors) > 0 {
		reporter := errors.NewReporter(path, string(source))
		for _, cerr := range compileErrors {
			fmt.Print(reporter.Format(cerr))
		}
		color.Red("Compilation failed after %s", formatDuration(time.Since(startTime)))
		os.Exit(1)
	}

	for _, artifact := range result.Artifacts {
		fmt.Printf("  %s (%d bytes)\n", filepath.Join(outDir, artifact.Name), len(artifact.Bytes))
	}
	color.Green("Successfully compiled %s in %s", path, formatDuration(time.Since(startTime)))
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
