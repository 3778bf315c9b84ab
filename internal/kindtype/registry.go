// internal/kindtype/registry.go
package kindtype

// FieldDef names one field of a user-defined struct type and its
// source-level type name (resolved to a WASM field type by the emitter's
// type manager — see internal/typemanager).
type FieldDef struct {
	Name     string
	TypeName string
}

type userType struct {
	Tag    Kind
	Fields []FieldDef
}

// TypeRegistry maps a user type name to its assigned Kind tag and field
// layout. Tags are handed out starting at UserTypeTagStart so a runtime
// kind check can tell built-ins from user structs in constant time.
// Re-registering the same name is idempotent.
type TypeRegistry struct {
	byName map[string]*userType
	order  []string
	next   Kind
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		byName: make(map[string]*userType),
		next:   UserTypeTagStart,
	}
}

// Register assigns (or returns the existing) tag for name with the given
// field layout. Calling Register twice with the same name is a no-op on
// the second call, regardless of the fields passed.
func (r *TypeRegistry) Register(name string, fields []FieldDef) Kind {
	if existing, ok := r.byName[name]; ok {
		return existing.Tag
	}
	ut := &userType{Tag: r.next, Fields: fields}
	r.byName[name] = ut
	r.order = append(r.order, name)
	r.next++
	return ut.Tag
}

func (r *TypeRegistry) Lookup(name string) (Kind, []FieldDef, bool) {
	ut, ok := r.byName[name]
	if !ok {
		return 0, nil, false
	}
	return ut.Tag, ut.Fields, true
}

// Names returns registered type names in registration order, the order
// the type manager must emit their struct definitions in.
func (r *TypeRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *TypeRegistry) Fields(name string) []FieldDef {
	if ut, ok := r.byName[name]; ok {
		return ut.Fields
	}
	return nil
}
