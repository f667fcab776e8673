package graph

import (
	"github.com/roach88/versets/internal/vset"
)

// Reachable returns the sets reachable from roots over binding edges in
// breadth-first order. Roots are included when includingRoot is set or
// when they are reached again through a cycle.
func Reachable(roots []*vset.Set, includingRoot bool) []*vset.Set {
	visited := make(map[*vset.Set]bool)
	var out []*vset.Set
	queue := make([]*vset.Set, 0, len(roots))

	for _, r := range roots {
		if r == nil || visited[r] {
			continue
		}
		visited[r] = true
		if includingRoot {
			out = append(out, r)
		}
		queue = append(queue, r)
	}

	isRoot := make(map[*vset.Set]bool, len(roots))
	for _, r := range roots {
		isRoot[r] = true
	}
	reported := make(map[*vset.Set]bool, len(out))
	for _, s := range out {
		reported[s] = true
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, t := range s.Binding() {
			if isRoot[t] && !reported[t] {
				reported[t] = true
				out = append(out, t)
			}
			if visited[t] {
				continue
			}
			visited[t] = true
			reported[t] = true
			out = append(out, t)
			queue = append(queue, t)
		}
	}
	return out
}

// IsReachable reports whether target is bound, directly or transitively,
// by source. The search starts at target and follows target's binding
// edges looking for source.
func IsReachable(source, target *vset.Set) bool {
	if source == nil || target == nil {
		return false
	}
	visited := map[*vset.Set]bool{target: true}
	stack := []*vset.Set{target}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range s.Binding() {
			if t == source {
				return true
			}
			if !visited[t] {
				visited[t] = true
				stack = append(stack, t)
			}
		}
	}
	return false
}
