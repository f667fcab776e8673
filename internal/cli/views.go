package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/vset"
)

// SetView is the JSON rendering of a set.
type SetView struct {
	UUID     string   `json:"uuid"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Visible  bool     `json:"visible"`
	Members  int      `json:"members"`
	Binding  []string `json:"binding,omitempty"`
	Hash     string   `json:"hash,omitempty"`
	Revision string   `json:"revision,omitempty"`
}

func newSetView(reg *descriptor.Registry, s *vset.Set) SetView {
	v := SetView{
		UUID:     s.UUID.String(),
		Name:     s.Name,
		Type:     s.Type.String(),
		Visible:  s.Visible,
		Members:  len(s.IDs()),
		Binding:  setNames(s.Binding()),
		Revision: s.Revision,
	}
	if h, err := vset.ContentHash(reg, s); err == nil {
		v.Hash = h
	}
	return v
}

func newSetViews(reg *descriptor.Registry, sets []*vset.Set) []SetView {
	views := make([]SetView, len(sets))
	for i, s := range sets {
		views[i] = newSetView(reg, s)
	}
	return views
}

func setNames(sets []*vset.Set) []string {
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}
	return names
}

// joinStrings renders names for text output; "-" for none.
func joinStrings(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func (v SetView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %d member(s)", v.Name, v.Type, v.Members)
	if !v.Visible {
		b.WriteString(" hidden")
	}
	if len(v.Binding) > 0 {
		fmt.Fprintf(&b, " bound by: %s", strings.Join(v.Binding, ", "))
	}
	return b.String()
}
