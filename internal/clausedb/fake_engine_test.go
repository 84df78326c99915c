package clausedb

import "github.com/go-air/gini/z"

// fakeEngine is a hand-written stand-in for gini/inter.S, in the spirit of
// the teacher's counterfeiter-generated FakeS (search_test.go): it lets
// tests script Test/Untest/Solve outcomes instead of depending on a real
// SAT solver's search order.
type fakeEngine struct {
	nextVar      uint32
	clauses      [][]z.Lit
	curClause    []z.Lit
	assumed      [][]z.Lit
	testResults  []int
	untestCalls  int
	solveResults []int
	solveCalls   int
	testCalls    int
	values       map[z.Lit]bool
	why          []z.Lit
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{values: make(map[z.Lit]bool)}
}

func (f *fakeEngine) Lit() z.Lit {
	f.nextVar++
	return z.Lit(f.nextVar << 1)
}

func (f *fakeEngine) Add(m z.Lit) {
	if m == z.LitNull {
		f.clauses = append(f.clauses, f.curClause)
		f.curClause = nil
		return
	}
	f.curClause = append(f.curClause, m)
}

func (f *fakeEngine) Assume(ms ...z.Lit) {
	f.assumed = append(f.assumed, append([]z.Lit(nil), ms...))
}

func (f *fakeEngine) Test(dst []z.Lit) (int, []z.Lit) {
	r := 0
	if f.testCalls < len(f.testResults) {
		r = f.testResults[f.testCalls]
	}
	f.testCalls++
	return r, dst
}

func (f *fakeEngine) Untest() int {
	f.untestCalls++
	return 0
}

func (f *fakeEngine) Solve() int {
	r := 1
	if f.solveCalls < len(f.solveResults) {
		r = f.solveResults[f.solveCalls]
	}
	f.solveCalls++
	return r
}

func (f *fakeEngine) Value(m z.Lit) bool { return f.values[m] }

func (f *fakeEngine) Why(dst []z.Lit) []z.Lit { return append(dst, f.why...) }
