package descriptor

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize bounds the number of memoized field lists.
const DefaultCacheSize = 1024

// Registry holds descriptors keyed by type name.
type Registry struct {
	mu          sync.RWMutex
	types       map[string]*Descriptor
	constraints map[string]*Constraint

	fields *lru.Cache[string, []Field]
	flight singleflight.Group
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for skipped values during traversal.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	cache, err := lru.New[string, []Field](DefaultCacheSize)
	if err != nil {
		// Only fails for a non-positive size.
		panic(err)
	}
	r := &Registry{
		types:       make(map[string]*Descriptor),
		constraints: make(map[string]*Constraint),
		fields:      cache,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register validates and stores a descriptor. The descriptor is copied;
// later changes to d do not affect the registry.
func (r *Registry) Register(d Descriptor) error {
	if err := validate(&d); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[d.Name]; exists {
		return &Error{Code: ErrCodeInvalidDescriptor, Message: "type already registered", Type: d.Name}
	}
	r.types[d.Name] = d.clone()
	r.fields.Remove(d.Name)
	return nil
}

// MustRegister is like Register but panics on error.
// Use only in tests or static initialization.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

func validate(d *Descriptor) error {
	if d.Name == "" {
		return &Error{Code: ErrCodeInvalidDescriptor, Message: "type name is required"}
	}
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return &Error{Code: ErrCodeInvalidDescriptor, Message: "field name is required", Type: d.Name}
		}
		if seen[f.Name] {
			return &Error{Code: ErrCodeInvalidDescriptor, Message: "duplicate field", Type: d.Name, Field: f.Name}
		}
		seen[f.Name] = true
	}
	if d.IdentityField != "" && !seen[d.IdentityField] {
		return &Error{Code: ErrCodeInvalidDescriptor, Message: "identity field is not declared", Type: d.Name, Field: d.IdentityField}
	}
	if d.Strategy == PerObjectType && len(d.Divisors) == 0 {
		return &Error{Code: ErrCodeInvalidDescriptor, Message: "per_object_type requires divisor fields", Type: d.Name}
	}
	for _, div := range d.Divisors {
		if !seen[div] {
			return &Error{Code: ErrCodeInvalidDescriptor, Message: "divisor field is not declared", Type: d.Name, Field: div}
		}
	}
	return nil
}

// RegisterConstraint makes a named constraint available to declarations.
func (r *Registry) RegisterConstraint(c Constraint) error {
	if c.Name == "" || c.Check == nil {
		return fmt.Errorf("constraint requires a name and a check")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cc := c
	r.constraints[c.Name] = &cc
	return nil
}

func (r *Registry) constraint(name string) (*Constraint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.constraints[name]
	return c, ok
}

// Lookup returns the descriptor for a type name.
func (r *Registry) Lookup(typeName string) (*Descriptor, error) {
	r.mu.RLock()
	d, ok := r.types[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, newUnknownType(typeName)
	}
	return d, nil
}

// Describe returns the descriptor for an object.
func (r *Registry) Describe(o Object) (*Descriptor, error) {
	if o == nil {
		return nil, newUnknownType("<nil>")
	}
	return r.Lookup(o.TypeName())
}

// Types returns all registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Reset drops all memoized lookups. Registered descriptors are kept.
func (r *Registry) Reset() {
	r.fields.Purge()
}

// ComparableFields returns the fields that take part in comparison,
// ordered by Order and then by declaration order.
func (r *Registry) ComparableFields(typeName string) ([]Field, error) {
	if fields, ok := r.fields.Get(typeName); ok {
		return fields, nil
	}

	v, err, _ := r.flight.Do(typeName, func() (any, error) {
		d, err := r.Lookup(typeName)
		if err != nil {
			return nil, err
		}
		fields := make([]Field, 0, len(d.Fields))
		for _, f := range d.Fields {
			if !f.Skip {
				fields = append(fields, f)
			}
		}
		slices.SortStableFunc(fields, func(a, b Field) int {
			return a.Order - b.Order
		})
		r.fields.Add(typeName, fields)
		return fields, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Field), nil
}

// IsVersionedEntity reports whether objects of the type are grouped into sets.
func (r *Registry) IsVersionedEntity(typeName string) bool {
	d, err := r.Lookup(typeName)
	return err == nil && d.Versioned
}

// GroupingStrategy returns the declared strategy of a type.
func (r *Registry) GroupingStrategy(typeName string) (Strategy, error) {
	d, err := r.Lookup(typeName)
	if err != nil {
		return 0, err
	}
	return d.Strategy, nil
}

// BoundByDeclarations returns the type names declared to bind the type.
func (r *Registry) BoundByDeclarations(typeName string) []string {
	d, err := r.Lookup(typeName)
	if err != nil {
		return nil
	}
	return d.BoundBy
}

// Get reads a declared field of an object. An unset field yields nil.
func (r *Registry) Get(o Object, field string) (any, error) {
	d, err := r.Describe(o)
	if err != nil {
		return nil, err
	}
	if _, ok := d.Field(field); !ok {
		return nil, &Error{Code: ErrCodeUnknownField, Message: "field not declared", Type: d.Name, Field: field}
	}
	if d.Get != nil {
		v, _ := d.Get(o, field)
		return v, nil
	}
	acc, ok := o.(Accessor)
	if !ok {
		return nil, &Error{Code: ErrCodeInaccessible, Message: "no accessor for object", Type: d.Name, Field: field}
	}
	v, _ := acc.Field(field)
	return v, nil
}

// Set writes a declared field of an object.
func (r *Registry) Set(o Object, field string, value any) error {
	d, err := r.Describe(o)
	if err != nil {
		return err
	}
	if _, ok := d.Field(field); !ok {
		return &Error{Code: ErrCodeUnknownField, Message: "field not declared", Type: d.Name, Field: field}
	}
	if d.Set != nil {
		return d.Set(o, field, value)
	}
	acc, ok := o.(Accessor)
	if !ok {
		return &Error{Code: ErrCodeInaccessible, Message: "no accessor for object", Type: d.Name, Field: field}
	}
	return acc.SetField(field, value)
}

// Identity extracts the stable UUID of an object.
func (r *Registry) Identity(o Object) (uuid.UUID, error) {
	d, err := r.Describe(o)
	if err != nil {
		return uuid.Nil, err
	}
	if d.IdentityField == "" {
		return uuid.Nil, newMissingIdentity(d.Name)
	}
	v, err := r.Get(o, d.IdentityField)
	if err != nil {
		return uuid.Nil, err
	}
	switch id := v.(type) {
	case uuid.UUID:
		return id, nil
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, newInvalidIdentity(d.Name, d.IdentityField, v, err)
		}
		return parsed, nil
	default:
		return uuid.Nil, newInvalidIdentity(d.Name, d.IdentityField, v, nil)
	}
}

// Same reports whether a and b denote the same logical object.
func (r *Registry) Same(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.TypeName() != b.TypeName() {
		return false
	}
	d, err := r.Describe(a)
	if err != nil {
		return false
	}
	if d.Same != nil {
		return d.Same(a, b)
	}
	ida, err := r.Identity(a)
	if err != nil {
		return false
	}
	idb, err := r.Identity(b)
	if err != nil {
		return false
	}
	return ida == idb
}

// NewInstance constructs a default instance of a type.
func (r *Registry) NewInstance(typeName string) (Object, error) {
	d, err := r.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	if d.New != nil {
		return d.New(), nil
	}
	return NewRecord(d.Name, nil), nil
}

// Clone copies an object so it can be merged in place.
func (r *Registry) Clone(o Object) (Object, error) {
	d, err := r.Describe(o)
	if err != nil {
		return nil, err
	}
	if d.Clone != nil {
		return d.Clone(o), nil
	}
	c, err := r.NewInstance(d.Name)
	if err != nil {
		return nil, err
	}
	for _, f := range d.Fields {
		v, err := r.Get(o, f.Name)
		if err != nil {
			return nil, fmt.Errorf("clone %s: %w", d.Name, err)
		}
		if v == nil {
			continue
		}
		if err := r.Set(c, f.Name, copyValue(v)); err != nil {
			return nil, fmt.Errorf("clone %s: %w", d.Name, err)
		}
	}
	return c, nil
}

// Snapshot copies the pre-merge state of an object for a Resolver.
func (r *Registry) Snapshot(o Object) (Object, error) {
	d, err := r.Describe(o)
	if err != nil {
		return nil, err
	}
	if d.Snapshot != nil {
		return d.Snapshot(o), nil
	}
	return r.Clone(o)
}

// SubType resolves the sub-type of an object from its divisor fields.
// Only PerObjectType descriptors have a sub-type; others yield "".
func (r *Registry) SubType(o Object) (string, error) {
	d, err := r.Describe(o)
	if err != nil {
		return "", err
	}
	if d.Strategy != PerObjectType {
		return "", nil
	}

	parts := make([]string, 0, len(d.Divisors))
	for _, div := range d.Divisors {
		v, err := r.Get(o, div)
		if err != nil {
			return "", err
		}
		part, err := r.divisorType(d.Name, div, v)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "/"), nil
}

// divisorType maps one divisor value to a type name: an object yields its
// type (or its own sub-type), a container yields the single type shared by
// all of its elements.
func (r *Registry) divisorType(typeName, field string, v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", newSubTypeNotFound(typeName, field, "divisor value is null")
	case Object:
		if d, err := r.Describe(val); err == nil && d.Strategy == PerObjectType && d.Name != typeName {
			return r.SubType(val)
		}
		return val.TypeName(), nil
	case Seq:
		return r.elementsType(typeName, field, []any(val))
	case Array:
		return r.elementsType(typeName, field, []any(val))
	case Map:
		elems := make([]any, 0, len(val))
		for _, k := range sortedKeys(val) {
			elems = append(elems, val[k])
		}
		return r.elementsType(typeName, field, elems)
	default:
		return "", newSubTypeNotFound(typeName, field, fmt.Sprintf("divisor value %v is primitive", v))
	}
}

func (r *Registry) elementsType(typeName, field string, elems []any) (string, error) {
	if len(elems) == 0 {
		return "", newSubTypeNotFound(typeName, field, "divisor collection is empty")
	}
	var result string
	for i, e := range elems {
		t, err := r.divisorType(typeName, field, e)
		if err != nil {
			return "", err
		}
		if i > 0 && t != result {
			return "", newSubTypeNotFound(typeName, field,
				fmt.Sprintf("divisor collection mixes element types %s and %s", result, t))
		}
		result = t
	}
	return result, nil
}

func sortedKeys(m Map) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
