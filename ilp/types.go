// Package ilp builds the variable and constraint sets spec §4.5 names —
// site/sector/link selection, polarity, flow, time-division, demand
// shortfall, MCS classification, and their linearizations — as a
// solver-agnostic Problem that the solver package can hand to an LP/MILP
// backend. Every builder here emits variables and constraints in the
// canonical deterministic order derived from topology.ID's sorted string
// form, per spec §5's ordering guarantee.
package ilp

import (
	"fmt"
	"sort"
)

// Kind distinguishes a Variable's domain.
type Kind int

const (
	Binary Kind = iota
	Continuous
)

// Variable is one column of the problem matrix.
type Variable struct {
	Name  string // canonical id, e.g. "s[<siteID>]" or "f[<fromID>,<toID>]"
	Kind  Kind
	Lower float64
	Upper float64 // ignored (implicitly 1) for Binary
}

// Sense is a constraint's relational operator.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

// Term is one coefficient*variable addend in a constraint or objective.
type Term struct {
	Var  string
	Coef float64
}

// Constraint is one row of the problem matrix: Σ Terms[k] (Sense) RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// ObjectiveSense selects minimize or maximize.
type ObjectiveSense int

const (
	Minimize ObjectiveSense = iota
	Maximize
)

// Objective is the linear function a phase optimizes.
type Objective struct {
	Sense ObjectiveSense
	Terms []Term
}

// Problem is one phase's complete MILP formulation: every variable and
// constraint, in the order they must be emitted to the solver for
// run-to-run determinism (spec §8 property 1).
type Problem struct {
	Variables   []Variable
	Constraints []Constraint
	Objective   Objective
}

// Builder accumulates variables and constraints with deterministic,
// duplicate-suppressing insertion, then yields a Problem.
type Builder struct {
	vars     map[string]Variable
	varOrder []string
	cons     []Constraint
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{vars: make(map[string]Variable)}
}

// Var registers v if not already present (by Name) and returns its name.
// Re-registering the same name with different bounds is a bug in the
// caller; the first registration wins.
func (b *Builder) Var(v Variable) string {
	if _, exists := b.vars[v.Name]; !exists {
		b.vars[v.Name] = v
		b.varOrder = append(b.varOrder, v.Name)
	}
	return v.Name
}

// Constrain appends c. Constraints are kept in insertion order; callers
// are responsible for inserting them in canonical id order (every
// constraint builder in this package iterates sorted entity ids).
func (b *Builder) Constrain(c Constraint) { b.cons = append(b.cons, c) }

// Build finalizes the problem. Variables are re-sorted by name as a
// second deterministic pass, independent of registration order, so two
// builders fed the same entities in different orders still produce
// byte-identical variable lists.
func (b *Builder) Build(obj Objective) Problem {
	names := append([]string(nil), b.varOrder...)
	sort.Strings(names)
	vars := make([]Variable, len(names))
	for i, n := range names {
		vars[i] = b.vars[n]
	}
	return Problem{Variables: vars, Constraints: b.cons, Objective: obj}
}

// Variable-name constructors. Using fmt.Sprintf keeps names human-readable
// in LP debug dumps while remaining stable and collision-free: every
// argument is itself a stable id, joined by characters ([ , ]) that never
// appear inside one.

func SiteVar(site string) string                       { return fmt.Sprintf("s[%s]", site) }
func SectorVar(site string, sector int, channel int) string {
	return fmt.Sprintf("sigma[%s,%d,%d]", site, sector, channel)
}
func LinkVar(from, to string) string       { return fmt.Sprintf("l[%s,%s]", from, to) }
func PolarityVar(site string) string       { return fmt.Sprintf("p[%s]", site) }
func FlowVar(from, to string) string       { return fmt.Sprintf("f[%s,%s]", from, to) }
func TauVar(from, to string, channel int) string {
	return fmt.Sprintf("tau[%s,%s,%d]", from, to, channel)
}
func ShortfallVar(demand string) string { return fmt.Sprintf("phi[%s]", demand) }
func MCSClassVar(from, to string, channel, mcs int) string {
	return fmt.Sprintf("mu[%s,%s,%d,%d]", from, to, channel, mcs)
}
// ChiVarSector names χ_{i,k,l,c}: site's sector k against peer site l on channel c.
func ChiVarSector(site string, sector int, peerSite string, channel int) string {
	return fmt.Sprintf("chi[%s,%d,%s,%d]", site, sector, peerSite, channel)
}
func ZetaVar(from, to string, channel int) string {
	return fmt.Sprintf("zeta[%s,%s,%d]", from, to, channel)
}
