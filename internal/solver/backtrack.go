package solver

import (
	"context"
	"time"
)

type relation int

const (
	relEQ relation = iota
	relLE
	relGE
)

type constraint struct {
	terms []Term
	rel   relation
	rhs   int
}

// onlyBool reports whether every term in the constraint references a bool
// variable, which makes the constraint usable for early branch pruning.
func (c constraint) onlyBool(isBool []bool) bool {
	for _, t := range c.terms {
		if !isBool[t.Var.varID()] {
			return false
		}
	}
	return true
}

type variable struct {
	lo, hi int
	isBool bool
}

// maxNodes bounds the search tree regardless of the time budget, as a
// backstop against pathological inputs.
const maxNodes = 5_000_000

// BacktrackModel is a branch-and-bound backend for the Model interface: it
// branches on boolean option variables in creation order, prunes via
// running min/max bounds on bool-only linear constraints and on the
// objective's partial value, and resolves integer variables (used for the
// per-instructor teaching-day excess) by direct propagation once every bool
// variable in a solve leaf is fixed.
type BacktrackModel struct {
	vars        []variable
	constraints []constraint
	objective   []Term

	values []int

	boolOrder []int
	isBool    []bool

	bestObj    int
	bestValues []int
	found      bool

	nodes    int
	deadline time.Time
	ctx      context.Context
}

// NewBacktrackModel returns an empty model ready to accept variables and
// constraints.
func NewBacktrackModel() *BacktrackModel {
	return &BacktrackModel{}
}

func (m *BacktrackModel) NewBoolVar(name string) BoolVar {
	id := len(m.vars)
	m.vars = append(m.vars, variable{lo: 0, hi: 1, isBool: true})
	return BoolVar{id: id}
}

func (m *BacktrackModel) NewIntVar(lo, hi int, name string) IntVar {
	id := len(m.vars)
	m.vars = append(m.vars, variable{lo: lo, hi: hi, isBool: false})
	return IntVar{id: id}
}

func (m *BacktrackModel) AddLinearEQ(terms []Term, rhs int) {
	m.constraints = append(m.constraints, constraint{terms: terms, rel: relEQ, rhs: rhs})
}

func (m *BacktrackModel) AddLinearLE(terms []Term, rhs int) {
	m.constraints = append(m.constraints, constraint{terms: terms, rel: relLE, rhs: rhs})
}

func (m *BacktrackModel) AddLinearGE(terms []Term, rhs int) {
	m.constraints = append(m.constraints, constraint{terms: terms, rel: relGE, rhs: rhs})
}

func (m *BacktrackModel) Minimize(terms []Term) {
	m.objective = terms
}

func (m *BacktrackModel) Value(v Var) int {
	return m.values[v.varID()]
}

// Solve runs the branch-and-bound search until it proves optimality,
// exhausts the tree, or the deadline/node budget is hit.
func (m *BacktrackModel) Solve(ctx context.Context, deadline time.Duration) Status {
	m.values = make([]int, len(m.vars))
	for i := range m.values {
		m.values[i] = -1
	}
	m.isBool = make([]bool, len(m.vars))
	for i, v := range m.vars {
		m.isBool[i] = v.isBool
	}
	m.boolOrder = m.boolOrder[:0]
	for i, v := range m.vars {
		if v.isBool {
			m.boolOrder = append(m.boolOrder, i)
		}
	}

	m.found = false
	m.bestObj = 0
	m.nodes = 0
	m.ctx = ctx
	m.deadline = time.Now().Add(deadline)

	assignment := make([]int, len(m.vars))
	copy(assignment, m.values)

	timedOut := m.search(assignment, 0)

	if !m.found {
		if timedOut {
			return StatusUnknown
		}
		return StatusInfeasible
	}
	m.values = m.bestValues
	if timedOut {
		return StatusFeasible
	}
	return StatusOptimal
}

func (m *BacktrackModel) timeUp() bool {
	m.nodes++
	if m.nodes > maxNodes {
		return true
	}
	if m.nodes%512 != 0 {
		return false
	}
	if m.ctx != nil && m.ctx.Err() != nil {
		return true
	}
	return time.Now().After(m.deadline)
}

// search explores assignments of the boolean decision variables depth
// first. It returns true if the search was cut short by the time/node
// budget rather than exhausting the tree.
func (m *BacktrackModel) search(assignment []int, depth int) (timedOut bool) {
	if m.timeUp() {
		return true
	}

	if depth == len(m.boolOrder) {
		m.tryLeaf(assignment)
		return false
	}

	if m.found {
		lb := m.partialObjectiveLowerBound(assignment)
		if lb >= m.bestObj {
			return false
		}
	}

	varID := m.boolOrder[depth]
	for _, val := range [2]int{1, 0} {
		assignment[varID] = val
		if m.boolOnlyFeasible(assignment) {
			if m.search(assignment, depth+1) {
				assignment[varID] = -1
				return true
			}
		}
		assignment[varID] = -1
	}
	return false
}

// boolOnlyFeasible checks every constraint that references only boolean
// variables against the current partial assignment, pruning branches that
// can no longer satisfy it regardless of how remaining variables resolve.
func (m *BacktrackModel) boolOnlyFeasible(assignment []int) bool {
	for _, c := range m.constraints {
		if !c.onlyBool(m.isBool) {
			continue
		}
		minSum, maxSum := 0, 0
		for _, t := range c.terms {
			v := assignment[t.Var.varID()]
			if v == -1 {
				if t.Coef > 0 {
					maxSum += t.Coef
				} else {
					minSum += t.Coef
				}
				continue
			}
			minSum += t.Coef * v
			maxSum += t.Coef * v
		}
		switch c.rel {
		case relLE:
			if minSum > c.rhs {
				return false
			}
		case relGE:
			if maxSum < c.rhs {
				return false
			}
		case relEQ:
			if minSum > c.rhs || maxSum < c.rhs {
				return false
			}
		}
	}
	return true
}

// partialObjectiveLowerBound sums the objective contribution of already
// fixed variables, a valid lower bound since every weight used by this
// engine is non-negative.
func (m *BacktrackModel) partialObjectiveLowerBound(assignment []int) int {
	total := 0
	for _, t := range m.objective {
		v := assignment[t.Var.varID()]
		if v == -1 {
			continue
		}
		total += t.Coef * v
	}
	return total
}

// tryLeaf resolves integer variables by propagation, verifies every
// constraint against the full assignment, and updates the incumbent if the
// leaf is feasible and improves on it.
func (m *BacktrackModel) tryLeaf(assignment []int) {
	full := make([]int, len(assignment))
	copy(full, assignment)

	for i, v := range m.vars {
		if v.isBool {
			continue
		}
		val, ok := m.resolveIntVar(full, i)
		if !ok {
			return
		}
		full[i] = val
	}

	for _, c := range m.constraints {
		sum := 0
		for _, t := range c.terms {
			sum += t.Coef * full[t.Var.varID()]
		}
		switch c.rel {
		case relLE:
			if sum > c.rhs {
				return
			}
		case relGE:
			if sum < c.rhs {
				return
			}
		case relEQ:
			if sum != c.rhs {
				return
			}
		}
	}

	obj := 0
	for _, t := range m.objective {
		obj += t.Coef * full[t.Var.varID()]
	}

	if !m.found || obj < m.bestObj {
		m.found = true
		m.bestObj = obj
		m.bestValues = append([]int(nil), full...)
	}
}

// resolveIntVar narrows variable id's domain using every constraint that
// mentions it alongside already-known values, then returns the smallest
// value in the narrowed range (every integer variable this engine creates
// carries a non-negative objective weight, so the minimizing choice is
// always the smallest feasible value).
func (m *BacktrackModel) resolveIntVar(full []int, id int) (int, bool) {
	lo, hi := m.vars[id].lo, m.vars[id].hi

	for _, c := range m.constraints {
		var coef int
		found := false
		rest := 0
		for _, t := range c.terms {
			if t.Var.varID() == id {
				coef = t.Coef
				found = true
				continue
			}
			rest += t.Coef * full[t.Var.varID()]
		}
		if !found || coef == 0 {
			continue
		}

		switch c.rel {
		case relEQ:
			v := c.rhs - rest
			if v%coef != 0 {
				return 0, false
			}
			exact := v / coef
			if exact > lo {
				lo = exact
			}
			if exact < hi {
				hi = exact
			}
		case relLE:
			// coef*x + rest <= rhs
			bound := float64(c.rhs-rest) / float64(coef)
			if coef > 0 {
				if b := floorInt(bound); b < hi {
					hi = b
				}
			} else {
				if b := ceilInt(bound); b > lo {
					lo = b
				}
			}
		case relGE:
			// coef*x + rest >= rhs
			bound := float64(c.rhs-rest) / float64(coef)
			if coef > 0 {
				if b := ceilInt(bound); b > lo {
					lo = b
				}
			} else {
				if b := floorInt(bound); b < hi {
					hi = b
				}
			}
		}
		if lo > hi {
			return 0, false
		}
	}

	return lo, true
}

func floorInt(f float64) int {
	i := int(f)
	if f < float64(i) {
		i--
	}
	return i
}

func ceilInt(f float64) int {
	i := int(f)
	if f > float64(i) {
		i++
	}
	return i
}
