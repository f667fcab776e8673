package descriptor

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// Declaration is a type descriptor declared in CUE.
//
//	types: Component: {
//		versioned: true
//		identity:  "id"
//		bound_by: ["Location"]
//		fields: [
//			{name: "id", order: 0},
//			{name: "name", order: 1},
//			{name: "location", order: 2, kind: "reference"},
//		]
//	}
type Declaration struct {
	Name      string
	Versioned bool
	Strategy  Strategy
	SetName   string
	Super     string
	Visible   bool
	Identity  string
	Fields    []FieldDeclaration
	Divisors  []string
	BoundBy   []string
}

// FieldDeclaration is one declared field.
type FieldDeclaration struct {
	Name       string
	Order      int
	Visible    bool
	Kind       FieldKind
	Skip       bool
	Constraint string // name of a constraint registered with RegisterConstraint
}

// DeclarationError is a declaration error with its CUE source position.
type DeclarationError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *DeclarationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadDeclarations loads every CUE file of a directory and compiles the
// declarations found under "types".
func LoadDeclarations(dir string) ([]Declaration, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("declarations directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileDeclarations(value)
}

// ParseDeclarations compiles declarations from CUE source text.
func ParseDeclarations(filename, src string) ([]Declaration, error) {
	value := cuecontext.New().CompileString(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileDeclarations(value)
}

// CompileDeclarations extracts declarations from a CUE value holding a
// "types" struct. Types are returned in source order.
func CompileDeclarations(v cue.Value) ([]Declaration, error) {
	typesVal := v.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return nil, &DeclarationError{Field: "types", Message: "no types declared", Pos: v.Pos()}
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var decls []Declaration
	for iter.Next() {
		decl, err := compileDeclaration(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func compileDeclaration(name string, v cue.Value) (Declaration, error) {
	decl := Declaration{Name: name, Visible: true}
	var err error

	if decl.Versioned, err = lookupBool(v, "versioned", true); err != nil {
		return decl, err
	}
	if decl.Visible, err = lookupBool(v, "visible", true); err != nil {
		return decl, err
	}
	strategy, err := lookupString(v, "strategy")
	if err != nil {
		return decl, err
	}
	if decl.Strategy, err = ParseStrategy(strategy); err != nil {
		return decl, &DeclarationError{Field: name + ".strategy", Message: err.Error(), Pos: v.Pos()}
	}
	if decl.SetName, err = lookupString(v, "set_name"); err != nil {
		return decl, err
	}
	if decl.Super, err = lookupString(v, "super"); err != nil {
		return decl, err
	}
	if decl.Identity, err = lookupString(v, "identity"); err != nil {
		return decl, err
	}
	if decl.Divisors, err = lookupStrings(v, "divisors"); err != nil {
		return decl, err
	}
	if decl.BoundBy, err = lookupStrings(v, "bound_by"); err != nil {
		return decl, err
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return decl, nil
	}
	fields, err := fieldsVal.List()
	if err != nil {
		return decl, formatCUEError(err)
	}
	for i := 0; fields.Next(); i++ {
		fd, err := compileField(fields.Value(), i)
		if err != nil {
			return decl, err
		}
		decl.Fields = append(decl.Fields, fd)
	}
	return decl, nil
}

func compileField(v cue.Value, index int) (FieldDeclaration, error) {
	fd := FieldDeclaration{Order: index}

	name, err := lookupString(v, "name")
	if err != nil {
		return fd, err
	}
	if name == "" {
		return fd, &DeclarationError{Field: "fields.name", Message: "field name is required", Pos: v.Pos()}
	}
	fd.Name = name

	if orderVal := v.LookupPath(cue.ParsePath("order")); orderVal.Exists() {
		order, err := orderVal.Int64()
		if err != nil {
			return fd, formatCUEError(err)
		}
		fd.Order = int(order)
	}
	if fd.Visible, err = lookupBool(v, "visible", true); err != nil {
		return fd, err
	}
	if fd.Skip, err = lookupBool(v, "skip", false); err != nil {
		return fd, err
	}
	kind, err := lookupString(v, "kind")
	if err != nil {
		return fd, err
	}
	if fd.Kind, err = ParseFieldKind(kind); err != nil {
		return fd, &DeclarationError{Field: name + ".kind", Message: err.Error(), Pos: v.Pos()}
	}
	if fd.Constraint, err = lookupString(v, "constraint"); err != nil {
		return fd, err
	}
	return fd, nil
}

func lookupString(v cue.Value, path string) (string, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return "", nil
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func lookupBool(v cue.Value, path string, def bool) (bool, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return def, nil
	}
	b, err := val.Bool()
	if err != nil {
		return def, formatCUEError(err)
	}
	return b, nil
}

func lookupStrings(v cue.Value, path string) ([]string, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return nil, nil
	}
	iter, err := val.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &DeclarationError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}

// Declare registers Record-backed descriptors for declarations. Field
// constraints are resolved against constraints registered earlier.
func (r *Registry) Declare(decls ...Declaration) error {
	for _, decl := range decls {
		d := Descriptor{
			Name:          decl.Name,
			Versioned:     decl.Versioned,
			Strategy:      decl.Strategy,
			SetName:       decl.SetName,
			Super:         decl.Super,
			Visible:       decl.Visible,
			IdentityField: decl.Identity,
			Divisors:      decl.Divisors,
			BoundBy:       decl.BoundBy,
		}
		for _, fd := range decl.Fields {
			f := Field{
				Name:    fd.Name,
				Order:   fd.Order,
				Visible: fd.Visible,
				Kind:    fd.Kind,
				Skip:    fd.Skip,
			}
			if fd.Constraint != "" {
				c, ok := r.constraint(fd.Constraint)
				if !ok {
					return &Error{
						Code:    ErrCodeInvalidDescriptor,
						Message: fmt.Sprintf("unknown constraint %q", fd.Constraint),
						Type:    decl.Name,
						Field:   fd.Name,
					}
				}
				f.Constraint = c
			}
			d.Fields = append(d.Fields, f)
		}
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}
