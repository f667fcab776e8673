package graph

import (
	"log/slog"
	"slices"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/vset"
)

// Checker decides whether a set is referentially bound by another. It is
// stateless apart from the registry and safe for concurrent use.
type Checker struct {
	reg    *descriptor.Registry
	logger *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger used for members whose references cannot be
// resolved.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = l
	}
}

// NewChecker creates a Checker over reg.
func NewChecker(reg *descriptor.Registry, opts ...Option) *Checker {
	c := &Checker{reg: reg, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsBoundBy reports whether bound is bound by binder: either the type of
// bound declares binder's type in its bound-by relations, or some member
// of bound holds a member of binder, directly or inside a collection,
// map or array. The relation is not symmetric.
func (c *Checker) IsBoundBy(bound, binder *vset.Set) bool {
	if bound == nil || binder == nil {
		return false
	}
	if slices.Contains(c.reg.BoundByDeclarations(bound.Type.Primary), binder.Type.Primary) {
		return true
	}

	for _, m := range bound.Members() {
		nested, err := c.reg.NestedVersionedValues(m)
		if err != nil {
			c.logger.Warn("cannot inspect member references",
				"set", bound.Name, "object", m.TypeName(), "err", err)
			continue
		}
		for _, n := range nested {
			id, err := c.reg.Identity(n)
			if err != nil {
				c.logger.Warn("referenced object has no identity",
					"set", bound.Name, "object", n.TypeName(), "err", err)
				continue
			}
			if binder.Has(id) {
				return true
			}
		}
	}
	return false
}

// Edge is one binding edge From -> To.
type Edge struct {
	From *vset.Set
	To   *vset.Set
}

// Verify returns every binding edge among sets that checker does not
// confirm. A graph built only through Set.Bind yields none.
func Verify(checker vset.BindingChecker, sets []*vset.Set) []Edge {
	var invalid []Edge
	for _, s := range sets {
		for _, t := range s.Binding() {
			if !checker.IsBoundBy(s, t) {
				invalid = append(invalid, Edge{From: s, To: t})
			}
		}
	}
	return invalid
}

// BindAll attempts a binding edge from every set to every other set and
// skips the pairs checker rejects. The resulting edges are exactly the
// pairs that are actually bound.
func BindAll(checker vset.BindingChecker, sets []*vset.Set) {
	for _, s := range sets {
		for _, t := range sets {
			if s == t {
				continue
			}
			// Rejected pairs are expected.
			_ = s.Bind(t, checker)
		}
	}
}
