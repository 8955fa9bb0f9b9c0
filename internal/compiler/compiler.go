// Package compiler is the pipeline facade: source text in, class artifacts
// out. The interactive prompt, the command line, and anything that loads the
// generated classes sit outside this boundary and consume Result.
package compiler

import (
	"strings"

	"slate/internal/ast"
	"slate/internal/codegen"
	"slate/internal/errors"
	"slate/internal/parser"
	"slate/internal/semantic"
)

// Artifact is one generated class file.
type Artifact = codegen.Artifact

// Result is a successful compile: every class artifact for the program.
type Result struct {
	Artifacts []Artifact
}

// Compile runs scan, parse, check, and emit over one compilation unit.
// The first failing stage stops the pipeline; a compile either returns a
// complete artifact set or errors and no artifacts.
func Compile(filename, source string) (*Result, []errors.CompilerError) {
	program, parseErrs, scanErrs := parser.ParseSource(filename, source)

	var errs []errors.CompilerError
	for _, serr := range scanErrs {
		errs = append(errs, scanError(filename, serr))
	}
	for _, perr := range parseErrs {
		errs = append(errs, parseError(filename, perr))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	analyzer := semantic.NewAnalyzer()
	if semErrs := analyzer.Analyze(program); len(semErrs) > 0 {
		return nil, semErrs
	}

	emitter := codegen.NewEmitter(analyzer.Info(), filename)
	artifacts, emitErrs := emitter.Emit(program)
	if len(emitErrs) > 0 {
		return nil, emitErrs
	}

	return &Result{Artifacts: artifacts}, nil
}

// CompileToDir compiles and, only on success, writes every artifact into
// outDir: either all class files appear or none do.
func CompileToDir(filename, source, outDir string) (*Result, []errors.CompilerError) {
	result, errs := Compile(filename, source)
	if len(errs) > 0 {
		return nil, errs
	}
	if err := codegen.WriteArtifacts(result.Artifacts, outDir); err != nil {
		return nil, []errors.CompilerError{
			errors.New(errors.ErrorUnsupportedLowering, "failed to write artifacts: "+err.Error(), ast.Position{Filename: filename, Line: 1, Column: 1}).Build(),
		}
	}
	return result, nil
}

func scanError(filename string, serr parser.ScanError) errors.CompilerError {
	code := errors.ErrorUnexpectedCharacter
	switch {
	case strings.Contains(serr.Message, "string"):
		code = errors.ErrorUnterminatedString
	case strings.Contains(serr.Message, "comment"):
		code = errors.ErrorUnterminatedComment
	}
	return errors.New(code, serr.Message, position(filename, serr.Position)).
		WithLength(serr.Length).
		Build()
}

func parseError(filename string, perr parser.ParseError) errors.CompilerError {
	code := errors.ErrorUnexpectedToken
	switch {
	case strings.Contains(perr.Message, "not supported"):
		code = errors.ErrorNotSupported
	case strings.HasPrefix(perr.Message, "expected"):
		code = errors.ErrorMissingToken
	}
	message := perr.Message
	if perr.Actual.Raw != "" {
		message += ", found '" + perr.Actual.Raw + "'"
	}
	return errors.New(code, message, position(filename, perr.Position)).Build()
}

func position(filename string, pos parser.Position) ast.Position {
	return ast.Position{
		Filename: filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}
