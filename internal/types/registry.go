package types

// Registry indexes declared named types and generic definitions by name.
// Indexing by name rather than pointer keeps the type graph free of owning
// cycles: a member can mention its enclosing type and the lookup resolves it.
//
// One Registry serves one compile; fresh type-variable ids are drawn from it
// so they stay unique within the pass.
type Registry struct {
	named    map[string]Type
	generics map[string]*GenericDef
	nextVar  int
}

func NewRegistry() *Registry {
	return &Registry{
		named:    make(map[string]Type),
		generics: make(map[string]*GenericDef),
	}
}

// Define binds a named type. Redefinition reports false and leaves the first
// binding in place.
func (r *Registry) Define(name string, t Type) bool {
	if _, exists := r.named[name]; exists {
		return false
	}
	r.named[name] = t
	return true
}

// Rebind replaces an existing binding, or adds one if the name is unbound.
func (r *Registry) Rebind(name string, t Type) {
	r.named[name] = t
}

func (r *Registry) Lookup(name string) (Type, bool) {
	t, ok := r.named[name]
	return t, ok
}

// DefineGeneric registers a generic type definition once per declaration.
func (r *Registry) DefineGeneric(def *GenericDef) bool {
	if _, exists := r.generics[def.Name]; exists {
		return false
	}
	r.generics[def.Name] = def
	return true
}

func (r *Registry) Generic(name string) (*GenericDef, bool) {
	def, ok := r.generics[name]
	return def, ok
}

// FreshVar mints a type variable with a pass-unique id.
func (r *Registry) FreshVar(name string) *TypeVar {
	r.nextVar++
	return &TypeVar{Name: name, ID: r.nextVar}
}

// Names returns every bound name, for near-miss suggestions.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.named))
	for name := range r.named {
		names = append(names, name)
	}
	return names
}
