package solver

import (
	"fmt"
	"strings"

	"github.com/lvlath-labs/terramesh/ilp"
)

// writeLPFormat renders p in the CPLEX LP file convention: an objective
// line, a Subject To block, a Bounds block for continuous variables, and
// a Binaries block — the same plain-text shape every standard MILP
// solver's debug dump uses, so the files this planner emits are
// diffable against any external solver's own dump for the same problem.
func writeLPFormat(p ilp.Problem) string {
	var sb strings.Builder

	if p.Objective.Sense == ilp.Maximize {
		sb.WriteString("Maximize\n")
	} else {
		sb.WriteString("Minimize\n")
	}
	sb.WriteString(" obj: " + renderTerms(p.Objective.Terms) + "\n\n")

	sb.WriteString("Subject To\n")
	for _, c := range p.Constraints {
		sb.WriteString(fmt.Sprintf(" %s: %s %s %s\n", c.Name, renderTerms(c.Terms), senseSymbol(c.Sense), formatFloat(c.RHS)))
	}
	sb.WriteString("\n")

	var continuous, binaries []ilp.Variable
	for _, v := range p.Variables {
		if v.Kind == ilp.Binary {
			binaries = append(binaries, v)
		} else {
			continuous = append(continuous, v)
		}
	}

	if len(continuous) > 0 {
		sb.WriteString("Bounds\n")
		for _, v := range continuous {
			sb.WriteString(fmt.Sprintf(" %s <= %s <= %s\n", formatFloat(v.Lower), v.Name, formatFloat(v.Upper)))
		}
		sb.WriteString("\n")
	}

	if len(binaries) > 0 {
		sb.WriteString("Binaries\n ")
		names := make([]string, len(binaries))
		for i, v := range binaries {
			names[i] = v.Name
		}
		sb.WriteString(strings.Join(names, " "))
		sb.WriteString("\n\n")
	}

	sb.WriteString("End\n")
	return sb.String()
}

func renderTerms(terms []ilp.Term) string {
	if len(terms) == 0 {
		return "0"
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		sign := "+"
		coef := t.Coef
		if coef < 0 {
			sign = "-"
			coef = -coef
		}
		parts[i] = fmt.Sprintf("%s %s %s", sign, formatFloat(coef), t.Var)
	}
	out := strings.Join(parts, " ")
	return strings.TrimPrefix(out, "+ ")
}

func senseSymbol(s ilp.Sense) string {
	switch s {
	case ilp.LE:
		return "<="
	case ilp.GE:
		return ">="
	default:
		return "="
	}
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.6g", f)
}
