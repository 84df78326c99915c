package definition

import "github.com/solverkit/pcengine/pkg/lit"

// DependencyGraph is the positive dependency graph over defined atoms
// (spec §3's data model entry): an edge head -> bodyAtom exists whenever
// some rule defining head has bodyAtom occurring positively in its body.
// It is a pure function of the rule set, rebuilt wholesale after parsing
// finishes rather than maintained incrementally (grounded on
// original_source's test_scc.cpp, which asserts SCC computation is
// re-derived from the graph, never patched in place).
type DependencyGraph struct {
	rulesOf map[lit.Atom][]*Rule
	edges   map[lit.Atom][]lit.Atom
	defined map[lit.Atom]bool
}

// BuildDependencyGraph constructs the graph for a finished rule set.
func BuildDependencyGraph(rules []*Rule) *DependencyGraph {
	g := &DependencyGraph{
		rulesOf: make(map[lit.Atom][]*Rule),
		edges:   make(map[lit.Atom][]lit.Atom),
		defined: make(map[lit.Atom]bool),
	}
	for _, r := range rules {
		g.rulesOf[r.Head] = append(g.rulesOf[r.Head], r)
		g.defined[r.Head] = true
	}
	for _, r := range rules {
		for _, l := range r.Body {
			if l.Negated() {
				continue
			}
			if g.defined[l.Atom()] {
				g.edges[r.Head] = append(g.edges[r.Head], l.Atom())
			}
		}
	}
	return g
}

// RulesFor returns every rule whose head is a.
func (g *DependencyGraph) RulesFor(a lit.Atom) []*Rule { return g.rulesOf[a] }

// IsDefined reports whether a is the head of at least one rule.
func (g *DependencyGraph) IsDefined(a lit.Atom) bool { return g.defined[a] }

// SCC is a Tarjan strongly-connected-components partition over the
// positive dependency graph: map from atom to component id, plus the
// members of each component in discovery order.
type SCC struct {
	component map[lit.Atom]int
	members   [][]lit.Atom
}

// ComponentOf returns the SCC id containing a, and whether a is defined.
func (s *SCC) ComponentOf(a lit.Atom) (int, bool) {
	id, ok := s.component[a]
	return id, ok
}

// Members returns the atoms in component id.
func (s *SCC) Members(id int) []lit.Atom { return s.members[id] }

// InCycle reports whether a's component contains more than one atom, or a
// single atom with a self-loop (both count as requiring unfounded-set
// treatment; an acyclic singleton component never needs it).
func (s *SCC) InCycle(a lit.Atom, g *DependencyGraph) bool {
	id, ok := s.component[a]
	if !ok {
		return false
	}
	members := s.members[id]
	if len(members) > 1 {
		return true
	}
	for _, dep := range g.edges[a] {
		if dep == a {
			return true
		}
	}
	return false
}

// tarjanState is the per-call scratch Tarjan's algorithm needs; kept out
// of DependencyGraph/SCC so both stay plain data.
type tarjanState struct {
	g       *DependencyGraph
	index   map[lit.Atom]int
	low     map[lit.Atom]int
	onStack map[lit.Atom]bool
	stack   []lit.Atom
	next    int
	scc     *SCC
}

// ComputeSCC runs Tarjan's algorithm over g's positive dependency edges.
func ComputeSCC(g *DependencyGraph) *SCC {
	st := &tarjanState{
		g:       g,
		index:   make(map[lit.Atom]int),
		low:     make(map[lit.Atom]int),
		onStack: make(map[lit.Atom]bool),
		scc:     &SCC{component: make(map[lit.Atom]int)},
	}
	for a := range g.defined {
		if _, visited := st.index[a]; !visited {
			st.strongConnect(a)
		}
	}
	return st.scc
}

func (st *tarjanState) strongConnect(v lit.Atom) {
	st.index[v] = st.next
	st.low[v] = st.next
	st.next++
	st.stack = append(st.stack, v)
	st.onStack[v] = true

	for _, w := range st.g.edges[v] {
		if _, visited := st.index[w]; !visited {
			st.strongConnect(w)
			if st.low[w] < st.low[v] {
				st.low[v] = st.low[w]
			}
		} else if st.onStack[w] {
			if st.index[w] < st.low[v] {
				st.low[v] = st.index[w]
			}
		}
	}

	if st.low[v] != st.index[v] {
		return
	}
	id := len(st.scc.members)
	var members []lit.Atom
	for {
		n := len(st.stack) - 1
		w := st.stack[n]
		st.stack = st.stack[:n]
		st.onStack[w] = false
		st.scc.component[w] = id
		members = append(members, w)
		if w == v {
			break
		}
	}
	st.scc.members = append(st.scc.members, members)
}
