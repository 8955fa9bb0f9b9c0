package codegen

import (
	"os"
	"path/filepath"

	"slate/internal/ast"
	"slate/internal/classfile"
	"slate/internal/errors"
	"slate/internal/semantic"
	"slate/internal/types"
)

type emitState int

const (
	stateOpen emitState = iota
	stateEmitting
	stateClosed
)

// Artifact is one finished class file, named as it will appear on disk.
type Artifact struct {
	Name  string
	Bytes []byte
}

// Emitter lowers a type-checked program to one class artifact per top-level
// declaration. All state is scoped to one compile: construct a fresh Emitter
// per program.
type Emitter struct {
	info    *semantic.Info
	source  string
	state   emitState
	classes []builtClass
	errs    []errors.CompilerError

	// current class context
	cls       *classfile.ClassFile
	clsName   string
	thisType  types.Type
	lambdaSeq int
}

type builtClass struct {
	name string
	cf   *classfile.ClassFile
}

func NewEmitter(info *semantic.Info, sourceName string) *Emitter {
	return &Emitter{
		info:   info,
		source: sourceName,
		state:  stateOpen,
	}
}

func (e *Emitter) fail(err errors.CompilerError) {
	e.errs = append(e.errs, err)
}

func (e *Emitter) failed() bool {
	return len(e.errs) > 0
}

// Emit walks declarations in source order. No artifact bytes are produced
// unless every declaration lowers; a failed compile yields no output.
func (e *Emitter) Emit(program *ast.Program) ([]Artifact, []errors.CompilerError) {
	if e.state != stateOpen {
		e.fail(errors.New(errors.ErrorUnsupportedLowering, "emitter reused across compiles", ast.Position{}).Build())
		return nil, e.errs
	}
	e.state = stateEmitting

	for _, decl := range program.Decls {
		if e.failed() {
			break
		}
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			e.emitFunctionClass(d)
		case *ast.ClassDecl:
			e.emitClass(d)
		case *ast.TraitDecl:
			e.emitTrait(d)
		case *ast.ObjectDecl:
			e.emitObject(d)
		case *ast.ExtensionDecl:
			e.emitExtension(d)
		}
	}

	e.state = stateClosed
	if e.failed() {
		return nil, e.errs
	}

	artifacts := make([]Artifact, len(e.classes))
	for i, bc := range e.classes {
		artifacts[i] = Artifact{Name: bc.name + ".class", Bytes: bc.cf.Bytes()}
	}
	return artifacts, nil
}

// WriteArtifacts writes a successful compile's classes into outDir. Buffers
// are held in memory until here, so failures earlier in the pipeline leave
// the directory untouched.
func WriteArtifacts(artifacts []Artifact, outDir string) error {
	for _, artifact := range artifacts {
		path := filepath.Join(outDir, artifact.Name)
		if err := os.WriteFile(path, artifact.Bytes, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) openClass(name, super string, flags uint16) {
	e.cls = classfile.NewClassFile(name, super, flags)
	e.cls.SetSourceFile(e.source)
	e.clsName = name
	e.lambdaSeq = 0
}

func (e *Emitter) closeClass() {
	e.classes = append(e.classes, builtClass{name: e.clsName, cf: e.cls})
	e.cls = nil
	e.clsName = ""
	e.thisType = nil
}

// --- method-scope bookkeeping ---

type local struct {
	slot int
	t    types.Type
}

type methodScope struct {
	parent *methodScope
	vars   map[string]*local
}

func newMethodScope(parent *methodScope) *methodScope {
	return &methodScope{parent: parent, vars: make(map[string]*local)}
}

func (s *methodScope) lookup(name string) *local {
	for scope := s; scope != nil; scope = scope.parent {
		if v, ok := scope.vars[name]; ok {
			return v
		}
	}
	return nil
}

// methodCtx carries everything one method body's emission needs: the code
// assembler, slot allocation, and the receiver binding.
type methodCtx struct {
	code     *classfile.Code
	scope    *methodScope
	nextSlot int
	isStatic bool
	thisType types.Type
	retType  types.Type
}

func (m *methodCtx) declare(name string, t types.Type) *local {
	slot := m.nextSlot
	width := 1
	if types.IsPrim(t, types.KindDouble) {
		width = 2
	}
	m.nextSlot += width
	v := &local{slot: slot, t: t}
	m.scope.vars[name] = v
	if vt, ok := verifTypeOf(t); ok {
		m.code.SetLocal(slot, vt)
	}
	return v
}

func (m *methodCtx) child() *methodCtx {
	clone := *m
	clone.scope = newMethodScope(m.scope)
	return &clone
}
