package convert

import (
	"fmt"
	"log/slog"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/graph"
	"github.com/roach88/versets/internal/vset"
)

// Converter builds versioned sets from domain objects. It keeps no state
// between calls and is safe for concurrent use.
type Converter struct {
	reg     *descriptor.Registry
	checker vset.BindingChecker
	ids     vset.IDGenerator
	logger  *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithIDGenerator sets the generator of set identities.
func WithIDGenerator(g vset.IDGenerator) Option {
	return func(c *Converter) {
		c.ids = g
	}
}

// WithChecker sets the binding checker used to discover binding edges.
func WithChecker(ch vset.BindingChecker) Option {
	return func(c *Converter) {
		c.checker = ch
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// NewConverter creates a Converter over reg.
func NewConverter(reg *descriptor.Registry, opts ...Option) *Converter {
	c := &Converter{
		reg:    reg,
		ids:    vset.UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.checker == nil {
		c.checker = graph.NewChecker(reg, graph.WithLogger(c.logger))
	}
	return c
}

// pendingPair is a field/UUID pair whose target set is known only once the
// whole graph has been walked.
type pendingPair struct {
	key vset.FieldKey
	obj descriptor.Object
}

// conversion is the state of one Convert call.
type conversion struct {
	*Converter
	sets    []*vset.Set
	byType  map[vset.SetType]*vset.Set
	owner   map[descriptor.Object]*vset.Set
	pending []pendingPair
}

// Convert groups every versioned entity reachable from roots into sets and
// binds each pair of sets that is actually bound. Sets are returned in
// the order their first member was reached.
func (c *Converter) Convert(roots ...descriptor.Object) ([]*vset.Set, error) {
	if len(roots) == 0 {
		return nil, vset.Precondition("convert requires at least one root")
	}

	run := &conversion{
		Converter: c,
		byType:    make(map[vset.SetType]*vset.Set),
		owner:     make(map[descriptor.Object]*vset.Set),
	}

	visited := make(map[descriptor.Object]bool)
	queue := make([]descriptor.Object, 0, len(roots))
	for _, r := range roots {
		if r == nil {
			return nil, vset.Precondition("convert root is nil")
		}
		if !visited[r] {
			visited[r] = true
			queue = append(queue, r)
		}
	}

	for len(queue) > 0 {
		o := queue[0]
		queue = queue[1:]

		containers, err := run.absorb(o)
		if err != nil {
			return nil, err
		}

		nested, err := c.reg.NestedVersionedValues(o)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		for _, n := range append(nested, containers...) {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	if err := run.resolvePairs(); err != nil {
		return nil, err
	}

	graph.BindAll(c.checker, run.sets)

	c.logger.Debug("converted object graph",
		"roots", len(roots), "objects", len(visited), "sets", len(run.sets))
	return run.sets, nil
}

// absorb adds a versioned entity to the set of its type, or records the
// field/UUID pairs of a container. It returns the containers held by a
// container, which own the pairs of their own fields.
func (run *conversion) absorb(o descriptor.Object) ([]descriptor.Object, error) {
	d, err := run.reg.Describe(o)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	if !d.Versioned {
		refs, err := run.reg.FieldReferences(o)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		var containers []descriptor.Object
		for _, fr := range refs {
			key := vset.FieldKey{Owner: d.Name, Field: fr.Field}
			for _, obj := range fr.Objects {
				run.pending = append(run.pending, pendingPair{key: key, obj: obj})
			}
			containers = append(containers, fr.Containers...)
		}
		return containers, nil
	}

	t, display, err := run.setType(d, o)
	if err != nil {
		return nil, err
	}
	id, err := run.reg.Identity(o)
	if err != nil {
		return nil, err
	}

	s, ok := run.byType[t]
	if !ok {
		s = vset.New(run.ids.NewID(), vset.InitialName(display), t, d.Strategy, d.Visible)
		run.byType[t] = s
		run.sets = append(run.sets, s)
	}
	if !s.Add(id, o) {
		run.logger.Debug("duplicate identity in set", "set", s.Name, "object", d.Name, "id", id)
	}
	run.owner[o] = s
	return nil, nil
}

// setType resolves the grouping key and display name of a versioned
// entity.
func (run *conversion) setType(d *descriptor.Descriptor, o descriptor.Object) (vset.SetType, string, error) {
	primary, display := d.GroupName()
	t := vset.SetType{Primary: primary}
	if d.Strategy != descriptor.PerObjectType {
		return t, display, nil
	}
	sub, err := run.reg.SubType(o)
	if err != nil {
		return t, "", err
	}
	t.Sub = sub
	return t, display + "/" + sub, nil
}

func (run *conversion) resolvePairs() error {
	for _, p := range run.pending {
		s, ok := run.owner[p.obj]
		if !ok {
			continue
		}
		id, err := run.reg.Identity(p.obj)
		if err != nil {
			return err
		}
		s.AddFieldUUID(p.key, id)
	}
	return nil
}
