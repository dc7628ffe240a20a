package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/lvlath-labs/terramesh/config"
	"github.com/lvlath-labs/terramesh/ilp"
	"github.com/lvlath-labs/terramesh/matrix"
	"github.com/lvlath-labs/terramesh/radio"
	"github.com/lvlath-labs/terramesh/solver"
	"github.com/lvlath-labs/terramesh/topology"
)

// maxInterferersPerLink bounds how many co-channel interferers
// rankedInterferers keeps per receiving link, so a site with many
// selected incoming links doesn't blow up phase 5's χ-linearization term
// count with interferers too weak to plausibly affect classification.
const maxInterferersPerLink = 8

// pinSiteAndLinkDecisions fixes every Site.Selected/Polarity and
// Link.Selected decision phases 3-4 already made as equality constraints,
// so phase 5's MILP only resolves the variables those phases left open:
// per-link-per-channel time-division share, MCS class, and the χ
// interference-gating terms.
func pinSiteAndLinkDecisions(b *ilp.Builder, g *topology.CandidateGraph) {
	for _, s := range g.SortedSites() {
		id := s.ID.String()
		sVar := b.Var(ilp.Variable{Name: ilp.SiteVar(id), Kind: ilp.Binary})
		val := 0.0
		if s.Selected {
			val = 1.0
		}
		b.Constrain(ilp.Constraint{Name: "pin_site[" + id + "]", Terms: []ilp.Term{{Var: sVar, Coef: 1}}, Sense: ilp.EQ, RHS: val})

		pVar := b.Var(ilp.Variable{Name: ilp.PolarityVar(id), Kind: ilp.Binary})
		pval := 0.0
		if s.Polarity == 1 {
			pval = 1.0
		}
		b.Constrain(ilp.Constraint{Name: "pin_polarity[" + id + "]", Terms: []ilp.Term{{Var: pVar, Coef: 1}}, Sense: ilp.EQ, RHS: pval})
	}
	for _, l := range g.Links() {
		from, to := l.From.String(), l.To.String()
		lVar := b.Var(ilp.Variable{Name: ilp.LinkVar(from, to), Kind: ilp.Binary})
		val := 0.0
		if l.Selected {
			val = 1.0
		}
		b.Constrain(ilp.Constraint{Name: "pin_link[" + from + "," + to + "]", Terms: []ilp.Term{{Var: lVar, Coef: 1}}, Sense: ilp.EQ, RHS: val})
	}
}

// interferersSharingReceiver returns every other selected link terminating
// at the same site as l — the minimal set of candidate co-channel
// interferers a receiver must discriminate between, per spec §4.3's
// premise that interference is evaluated at a receiving sector.
func interferersSharingReceiver(selected []*topology.Link, l *topology.Link) []*topology.Link {
	var out []*topology.Link
	for _, other := range selected {
		if other.ID == l.ID || other.To != l.To {
			continue
		}
		out = append(out, other)
	}
	return out
}

// interferenceMatrix holds the pairwise received-power (mW) every
// selected link would contribute at every other selected link's
// receiver, indexed by position in selected. Built once per phase-5
// solve and consulted by rankedInterferers to keep the MILP's per-link
// interferer set bounded.
type interferenceMatrix struct {
	values *matrix.Dense
	index  map[string]int
}

func buildInterferenceMatrix(selected []*topology.Link) (*interferenceMatrix, error) {
	n := len(selected)
	values, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("pipeline: interference matrix: %w", err)
	}
	index := make(map[string]int, n)
	for i, l := range selected {
		index[l.ID.String()] = i
	}
	for i, l := range selected {
		for j, other := range selected {
			if i == j || other.To != l.To {
				continue
			}
			if err := values.Set(i, j, radio.DBmToMilliwatts(other.RSLDBm)); err != nil {
				return nil, fmt.Errorf("pipeline: interference matrix: %w", err)
			}
		}
	}
	return &interferenceMatrix{values: values, index: index}, nil
}

// rankedInterferers returns l's co-channel interferers, strongest-RSL
// first, truncated to maxInterferersPerLink.
func rankedInterferers(m *interferenceMatrix, selected []*topology.Link, l *topology.Link) []*topology.Link {
	cands := interferersSharingReceiver(selected, l)
	if len(cands) <= maxInterferersPerLink {
		return cands
	}
	row := m.index[l.ID.String()]
	sort.Slice(cands, func(a, b int) bool {
		col1, col2 := m.index[cands[a].ID.String()], m.index[cands[b].ID.String()]
		va, _ := m.values.At(row, col1)
		vb, _ := m.values.At(row, col2)
		return va > vb
	})
	return cands[:maxInterferersPerLink]
}

// phaseInterferenceMinimization implements spec §4.7 phase 5: with every
// site/sector/link selection fixed from phases 3-4, assign per-channel
// time-division shares, χ interference-gating terms, and MCS classes to
// maximize total classified throughput, applying AddPolarityExclusion,
// ChiLinearization, and AddSINRClassification per spec §4.5 families 4,
// 11, and 12.
func phaseInterferenceMinimization(ctx context.Context, cfg *config.Config, g *topology.CandidateGraph) (*topology.CandidateGraph, error) {
	out := g.Clone()

	var selected []*topology.Link
	for _, l := range out.Links() {
		if l.Selected {
			selected = append(selected, l)
		}
	}
	if len(selected) == 0 {
		return out, nil
	}

	ilpCtx := &ilp.Context{Graph: out, NumberOfChannels: cfg.NumberOfChannels}
	noiseMW := radio.DBmToMilliwatts(cfg.ThermalNoisePowerDBm + cfg.NoiseFigureDB)
	b := ilp.NewBuilder()
	pinSiteAndLinkDecisions(b, out)
	ilp.AddPolarityExclusion(b, ilpCtx)

	interference, err := buildInterferenceMatrix(selected)
	if err != nil {
		return nil, err
	}
	mcsRows := ilp.MCSRowsPerLink(ilpCtx)
	var objTerms []ilp.Term

	for _, l := range selected {
		from, to := l.From.String(), l.To.String()
		interferers := rankedInterferers(interference, selected, l)
		rows := mcsRows[from+">"+to]

		for _, c := range ilpCtx.Channels() {
			b.Var(ilp.Variable{Name: ilp.TauVar(from, to, c), Kind: ilp.Continuous, Lower: 0, Upper: 1})

			var interferenceTerms []ilp.InterferenceTerm
			for _, it := range interferers {
				itFrom := it.From.String()
				itTau := b.Var(ilp.Variable{Name: ilp.TauVar(itFrom, it.To.String(), c), Kind: ilp.Continuous, Lower: 0, Upper: 1})
				chi := ilp.ChiLinearization(b, from, 0, itFrom, c, itTau, ilp.PolarityVar(from), ilp.PolarityVar(itFrom))
				interferenceTerms = append(interferenceTerms, ilp.InterferenceTerm{
					ChiVar:         chi,
					InterferenceMW: radio.DBmToMilliwatts(it.RSLDBm),
				})
			}

			ilp.AddSINRClassification(b, from, to, c, radio.DBmToMilliwatts(l.RSLDBm), noiseMW, interferenceTerms, rows)
			for _, row := range rows {
				mu := b.Var(ilp.Variable{Name: ilp.MCSClassVar(from, to, c, row.MCS), Kind: ilp.Binary})
				objTerms = append(objTerms, ilp.Term{Var: mu, Coef: row.ThroughputMbps})
			}
		}
	}

	prob := b.Build(ilp.Objective{Sense: ilp.Maximize, Terms: objTerms})
	relGap, timeLimit := phaseLimits(cfg, PhaseInterferenceMinim)
	opts := solverOptions(cfg, PhaseInterferenceMinim, relGap, timeLimit)

	a := solver.Adapter{}
	res, err := a.Solve(ctx, a.Build(prob), opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: interference minimization phase: %w", err)
	}
	if res.Status == solver.Infeasible {
		return out, nil
	}

	for _, l := range selected {
		from, to := l.From.String(), l.To.String()
		bestMCS, bestThroughput := -1, 0.0
		bestChannel := 0
		for _, c := range ilpCtx.Channels() {
			for _, row := range mcsRows[from+">"+to] {
				if res.Value(ilp.MCSClassVar(from, to, c, row.MCS)) > 0.5 && row.ThroughputMbps > bestThroughput {
					bestMCS, bestThroughput, bestChannel = row.MCS, row.ThroughputMbps, c
				}
			}
		}
		if bestMCS >= 0 {
			l.ActiveMCS = bestMCS
			l.Channel = bestChannel
		}
	}
	return out, nil
}
