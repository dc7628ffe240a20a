package ilp

import (
	"math"
	"sort"

	"github.com/lvlath-labs/terramesh/radio"
	"github.com/lvlath-labs/terramesh/topology"
)

// Context bundles everything a constraint-family builder needs to read
// from the candidate graph and config; phases in pipeline assemble one
// per solve and call the builders below in the order spec §4.5 lists them.
type Context struct {
	Graph            *topology.CandidateGraph
	NumberOfChannels int // 1 when multi-channel is disabled; c is always dropped to 0 in that case
	PopCapacityMbps  float64
	BigM             float64 // M in flow-site gating and coverage relaxation
	DnDnLimit        int     // P_D
	DnTotalLimit     int     // P_T
	DiffSectorAngleLimitDeg float64 // α
	NearFarLengthRatio      float64 // ρ
	NearFarAngleLimitDeg    float64 // θ
}

func (c *Context) Channels() []int {
	n := c.NumberOfChannels
	if n < 1 {
		n = 1
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// sortedSiteIDs returns every site id as its string form, sorted.
func sortedSiteIDs(g *topology.CandidateGraph) []string {
	sites := g.SortedSites()
	ids := make([]string, len(sites))
	for i, s := range sites {
		ids[i] = s.ID.String()
	}
	return ids // already sorted, SortedSites sorts by id
}

// AddFlowBalance implements constraint family 1: net flow is zero at
// POP/DN/CN sites, d_i-φ_i at demand sites, and the super-source feeds at
// most PopCapacityMbps per POP.
func AddFlowBalance(b *Builder, ctx *Context) {
	g := ctx.Graph
	byFrom := make(map[string][]*topology.Link)
	byTo := make(map[string][]*topology.Link)
	for _, l := range g.Links() {
		byFrom[l.From.String()] = append(byFrom[l.From.String()], l)
		byTo[l.To.String()] = append(byTo[l.To.String()], l)
	}

	for _, s := range g.SortedSites() {
		id := s.ID.String()
		var terms []Term
		for _, l := range byFrom[id] {
			terms = append(terms, Term{Var: FlowVar(l.From.String(), l.To.String()), Coef: -1})
		}
		for _, l := range byTo[id] {
			terms = append(terms, Term{Var: FlowVar(l.From.String(), l.To.String()), Coef: 1})
		}
		if len(terms) == 0 {
			continue
		}
		if s.Type == topology.SitePOP {
			b.Constrain(Constraint{Name: "flow_balance_pop[" + id + "]", Terms: terms, Sense: GE, RHS: -ctx.PopCapacityMbps})
			continue
		}
		b.Constrain(Constraint{Name: "flow_balance[" + id + "]", Terms: terms, Sense: EQ, RHS: 0})
	}

	for _, d := range g.DemandSites() {
		id := d.ID.String()
		var terms []Term
		for _, l := range byTo[id] {
			terms = append(terms, Term{Var: FlowVar(l.From.String(), l.To.String()), Coef: 1})
		}
		phi := b.Var(Variable{Name: ShortfallVar(id), Kind: Continuous, Lower: 0, Upper: d.DemandGbps * 1000})
		terms = append(terms, Term{Var: phi, Coef: 1})
		b.Constrain(Constraint{Name: "flow_balance_demand[" + id + "]", Terms: terms, Sense: EQ, RHS: d.DemandGbps * 1000})
	}
}

// AddFlowCapacity implements constraint family 2: f_{i,j} bounded by both
// the time-division share and the MCS-class throughput sum. A demand
// access link (l.Backhaul == false) carries neither a time-division share
// nor an MCS class of its own — spec §9 only schedules airtime and MCS on
// radio links — so its flow is left bounded solely by the Upper on its
// own flow variable.
func AddFlowCapacity(b *Builder, ctx *Context, mcsRowsPerLink map[string][]radio.MCSRow) {
	for _, l := range ctx.Graph.Links() {
		from, to := l.From.String(), l.To.String()
		f := b.Var(Variable{Name: FlowVar(from, to), Kind: Continuous, Lower: 0, Upper: l.MaxThroughputMbps})
		if !l.Backhaul {
			continue
		}

		var tauTerms []Term
		for _, c := range ctx.Channels() {
			tau := b.Var(Variable{Name: TauVar(from, to, c), Kind: Continuous, Lower: 0, Upper: 1})
			tauTerms = append(tauTerms, Term{Var: tau, Coef: -l.MaxThroughputMbps})
		}
		b.Constrain(Constraint{Name: "flow_cap_tau[" + from + "," + to + "]",
			Terms: append([]Term{{Var: f, Coef: 1}}, tauTerms...), Sense: LE, RHS: 0})

		var mcsTerms []Term
		for _, c := range ctx.Channels() {
			for _, row := range mcsRowsPerLink[from+">"+to] {
				mu := b.Var(Variable{Name: MCSClassVar(from, to, c, row.MCS), Kind: Binary})
				mcsTerms = append(mcsTerms, Term{Var: mu, Coef: -row.ThroughputMbps})
			}
		}
		if len(mcsTerms) > 0 {
			b.Constrain(Constraint{Name: "flow_cap_mcs[" + from + "," + to + "]",
				Terms: append([]Term{{Var: f, Coef: 1}}, mcsTerms...), Sense: LE, RHS: 0})
		}
	}
}

// AddFlowSiteGating implements constraint family 3: incoming flow at a
// site cannot exceed M·s_i.
func AddFlowSiteGating(b *Builder, ctx *Context) {
	g := ctx.Graph
	byTo := make(map[string][]*topology.Link)
	for _, l := range g.Links() {
		byTo[l.To.String()] = append(byTo[l.To.String()], l)
	}
	for _, s := range g.SortedSites() {
		id := s.ID.String()
		sVar := b.Var(Variable{Name: SiteVar(id), Kind: Binary})
		var terms []Term
		for _, l := range byTo[id] {
			terms = append(terms, Term{Var: FlowVar(l.From.String(), l.To.String()), Coef: 1})
		}
		if len(terms) == 0 {
			continue
		}
		terms = append(terms, Term{Var: sVar, Coef: -ctx.BigM})
		b.Constrain(Constraint{Name: "flow_site_gate[" + id + "]", Terms: terms, Sense: LE, RHS: 0})
	}
}

// AddPolarityProxy implements constraint family 4's site-selection-phase
// variant: τ ≤ p_i + p_j and τ ≤ 2 - p_i - p_j, gating time-division share
// by polarity compatibility before link-selection variables exist.
func AddPolarityProxy(b *Builder, ctx *Context) {
	for _, l := range ctx.Graph.Links() {
		if !l.Backhaul {
			continue // a demand access link has no transmitting radio and no polarity to exclude on.
		}
		from, to := l.From.String(), l.To.String()
		pI := b.Var(Variable{Name: PolarityVar(from), Kind: Binary})
		pJ := b.Var(Variable{Name: PolarityVar(to), Kind: Binary})
		for _, c := range ctx.Channels() {
			tau := b.Var(Variable{Name: TauVar(from, to, c), Kind: Continuous, Lower: 0, Upper: 1})
			b.Constrain(Constraint{Name: "polarity_proxy_lo[" + from + "," + to + "]",
				Terms: []Term{{Var: tau, Coef: 1}, {Var: pI, Coef: -1}, {Var: pJ, Coef: -1}}, Sense: LE, RHS: 0})
			b.Constrain(Constraint{Name: "polarity_proxy_hi[" + from + "," + to + "]",
				Terms: []Term{{Var: tau, Coef: 1}, {Var: pI, Coef: 1}, {Var: pJ, Coef: 1}}, Sense: LE, RHS: 2})
		}
	}
}

// AddPolarityExclusion implements constraint family 4's link-selection-
// phase variant, gating ℓ directly once link-selection variables exist.
func AddPolarityExclusion(b *Builder, ctx *Context) {
	for _, l := range ctx.Graph.Links() {
		if !l.Backhaul {
			continue
		}
		from, to := l.From.String(), l.To.String()
		lVar := b.Var(Variable{Name: LinkVar(from, to), Kind: Binary})
		pI := b.Var(Variable{Name: PolarityVar(from), Kind: Binary})
		pJ := b.Var(Variable{Name: PolarityVar(to), Kind: Binary})
		b.Constrain(Constraint{Name: "polarity_excl_lo[" + from + "," + to + "]",
			Terms: []Term{{Var: lVar, Coef: 1}, {Var: pI, Coef: -1}, {Var: pJ, Coef: -1}}, Sense: LE, RHS: 0})
		b.Constrain(Constraint{Name: "polarity_excl_hi[" + from + "," + to + "]",
			Terms: []Term{{Var: lVar, Coef: 1}, {Var: pI, Coef: 1}, {Var: pJ, Coef: 1}}, Sense: LE, RHS: 2})
	}
}

// AddTimeDivision implements constraint family 5: per sector/channel the
// sum of τ over incident links is bounded by sector activity, and the
// per-link τ sum across channels is bounded by link selection.
func AddTimeDivision(b *Builder, ctx *Context, sectorOf map[string]*topology.Sector) {
	incident := make(map[string][]*topology.Link) // keyed by sector id string
	for _, l := range ctx.Graph.Links() {
		if !l.FromSector.IsZero() {
			incident[l.FromSector.String()] = append(incident[l.FromSector.String()], l)
		}
	}
	sectorIDs := make([]string, 0, len(incident))
	for id := range incident {
		sectorIDs = append(sectorIDs, id)
	}
	sort.Strings(sectorIDs)

	for _, sid := range sectorIDs {
		sec := sectorOf[sid]
		if sec == nil {
			continue
		}
		for _, c := range ctx.Channels() {
			sigma := b.Var(Variable{Name: SectorVar(sec.SiteID.String(), sec.NodeIndex, c), Kind: Binary})
			var terms []Term
			for _, l := range incident[sid] {
				tau := b.Var(Variable{Name: TauVar(l.From.String(), l.To.String(), c), Kind: Continuous, Lower: 0, Upper: 1})
				terms = append(terms, Term{Var: tau, Coef: 1})
			}
			terms = append(terms, Term{Var: sigma, Coef: -1})
			b.Constrain(Constraint{Name: "time_div_sector[" + sid + "," + sec.ID.String() + "]", Terms: terms, Sense: LE, RHS: 0})
		}
	}

	for _, l := range ctx.Graph.Links() {
		if !l.Backhaul {
			continue // access links carry no airtime share to bound by selection.
		}
		from, to := l.From.String(), l.To.String()
		lVar := b.Var(Variable{Name: LinkVar(from, to), Kind: Binary})
		var terms []Term
		for _, c := range ctx.Channels() {
			tau := b.Var(Variable{Name: TauVar(from, to, c), Kind: Continuous, Lower: 0, Upper: 1})
			terms = append(terms, Term{Var: tau, Coef: 1})
		}
		terms = append(terms, Term{Var: lVar, Coef: -1})
		b.Constrain(Constraint{Name: "time_div_link[" + from + "," + to + "]", Terms: terms, Sense: LE, RHS: 0})
	}
}

// AddSectorNodeCoupling implements constraint family 6: sectors on the
// same node share selection, a link requires both endpoint sectors
// selected, and backhaul links additionally require matching channels —
// the latter modeled by requiring σ equality per channel rather than
// introducing a separate channel-match variable.
func AddSectorNodeCoupling(b *Builder, ctx *Context, sectorsByNode map[string][]*topology.Sector) {
	nodeKeys := make([]string, 0, len(sectorsByNode))
	for k := range sectorsByNode {
		nodeKeys = append(nodeKeys, k)
	}
	sort.Strings(nodeKeys)

	for _, nodeKey := range nodeKeys {
		secs := sectorsByNode[nodeKey]
		if len(secs) < 2 {
			continue
		}
		sort.Slice(secs, func(i, j int) bool { return secs[i].ID.String() < secs[j].ID.String() })
		first := secs[0]
		for _, c := range ctx.Channels() {
			sigma0 := b.Var(Variable{Name: SectorVar(first.SiteID.String(), first.NodeIndex, c), Kind: Binary})
			for _, other := range secs[1:] {
				sigmaN := b.Var(Variable{Name: SectorVar(other.SiteID.String(), other.NodeIndex, c), Kind: Binary})
				b.Constrain(Constraint{Name: "sector_couple[" + first.ID.String() + "," + other.ID.String() + "]",
					Terms: []Term{{Var: sigma0, Coef: 1}, {Var: sigmaN, Coef: -1}}, Sense: EQ, RHS: 0})
			}
		}
	}

	for _, l := range ctx.Graph.Links() {
		if l.FromSector.IsZero() || l.ToSector.IsZero() {
			continue
		}
		from, to := l.From.String(), l.To.String()
		lVar := b.Var(Variable{Name: LinkVar(from, to), Kind: Binary})
		// ℓ ≤ σ_from and ℓ ≤ σ_to, on every channel the link could use.
		for _, c := range ctx.Channels() {
			sigmaFrom := b.Var(Variable{Name: SectorVar(l.From.String(), sectorNodeIndex(sectorsByNode, l.FromSector.String()), c), Kind: Binary})
			sigmaTo := b.Var(Variable{Name: SectorVar(l.To.String(), sectorNodeIndex(sectorsByNode, l.ToSector.String()), c), Kind: Binary})
			b.Constrain(Constraint{Name: "link_needs_from_sector[" + from + "," + to + "," + sigmaFrom + "]",
				Terms: []Term{{Var: lVar, Coef: 1}, {Var: sigmaFrom, Coef: -1}}, Sense: LE, RHS: 0})
			b.Constrain(Constraint{Name: "link_needs_to_sector[" + from + "," + to + "," + sigmaTo + "]",
				Terms: []Term{{Var: lVar, Coef: 1}, {Var: sigmaTo, Coef: -1}}, Sense: LE, RHS: 0})
		}
	}
}

func sectorNodeIndex(sectorsByNode map[string][]*topology.Sector, sectorID string) int {
	for _, secs := range sectorsByNode {
		for _, s := range secs {
			if s.ID.String() == sectorID {
				return s.NodeIndex
			}
		}
	}
	return 0
}

// AddSymmetricBackhaul implements constraint family 7: ℓ_{i,j} = ℓ_{j,i}
// for every DN↔DN / DN↔POP pair, per spec §9's two-directed-edges model.
func AddSymmetricBackhaul(b *Builder, ctx *Context) {
	seen := make(map[string]bool)
	for _, l := range ctx.Graph.Links() {
		if !l.Backhaul {
			continue
		}
		from, to := l.From.String(), l.To.String()
		key := from + "|" + to
		revKey := to + "|" + from
		if seen[key] || seen[revKey] {
			continue
		}
		seen[key] = true
		lFwd := b.Var(Variable{Name: LinkVar(from, to), Kind: Binary})
		lRev := b.Var(Variable{Name: LinkVar(to, from), Kind: Binary})
		b.Constrain(Constraint{Name: "symmetric_backhaul[" + from + "," + to + "]",
			Terms: []Term{{Var: lFwd, Coef: 1}, {Var: lRev, Coef: -1}}, Sense: EQ, RHS: 0})
	}
}

// AddP2MP implements constraint family 8: per DN sector, at most DnDnLimit
// DN/POP links and DnTotalLimit total links; each CN has at most one
// incoming link.
func AddP2MP(b *Builder, ctx *Context) {
	g := ctx.Graph
	byFromSector := make(map[string][]*topology.Link)
	for _, l := range g.Links() {
		if !l.FromSector.IsZero() {
			byFromSector[l.FromSector.String()] = append(byFromSector[l.FromSector.String()], l)
		}
	}
	sectorIDs := make([]string, 0, len(byFromSector))
	for id := range byFromSector {
		sectorIDs = append(sectorIDs, id)
	}
	sort.Strings(sectorIDs)

	sitesByID := make(map[string]*topology.Site)
	for _, s := range g.SortedSites() {
		sitesByID[s.ID.String()] = s
	}

	for _, sid := range sectorIDs {
		links := byFromSector[sid]
		var dnTerms, totalTerms []Term
		for _, l := range links {
			lVar := b.Var(Variable{Name: LinkVar(l.From.String(), l.To.String()), Kind: Binary})
			totalTerms = append(totalTerms, Term{Var: lVar, Coef: 1})
			if peer, ok := sitesByID[l.To.String()]; ok && (peer.Type == topology.SiteDN || peer.Type == topology.SitePOP) {
				dnTerms = append(dnTerms, Term{Var: lVar, Coef: 1})
			}
		}
		if len(dnTerms) > 0 {
			b.Constrain(Constraint{Name: "p2mp_dn[" + sid + "]", Terms: dnTerms, Sense: LE, RHS: float64(ctx.DnDnLimit)})
		}
		if len(totalTerms) > 0 {
			b.Constrain(Constraint{Name: "p2mp_total[" + sid + "]", Terms: totalTerms, Sense: LE, RHS: float64(ctx.DnTotalLimit)})
		}
	}

	byTo := make(map[string][]*topology.Link)
	for _, l := range g.Links() {
		byTo[l.To.String()] = append(byTo[l.To.String()], l)
	}
	for _, s := range g.SortedSites() {
		if s.Type != topology.SiteCN {
			continue
		}
		var terms []Term
		for _, l := range byTo[s.ID.String()] {
			lVar := b.Var(Variable{Name: LinkVar(l.From.String(), l.To.String()), Kind: Binary})
			terms = append(terms, Term{Var: lVar, Coef: 1})
		}
		if len(terms) > 0 {
			b.Constrain(Constraint{Name: "cn_single_homed[" + s.ID.String() + "]", Terms: terms, Sense: LE, RHS: 1})
		}
	}
}

// AddDeploymentGeometry implements constraint family 9: for any two links
// leaving the same site from different sectors, forbid simultaneous
// selection when their angular separation is below α, or below θ when
// their length ratio exceeds ρ. Under multi-channel, ζ gates the
// constraint to pairs that share a channel — two links can occupy the
// same physical arc if they are never active on the same channel.
func AddDeploymentGeometry(b *Builder, ctx *Context) {
	bySite := make(map[string][]*topology.Link)
	for _, l := range ctx.Graph.Links() {
		bySite[l.From.String()] = append(bySite[l.From.String()], l)
	}
	siteIDs := make([]string, 0, len(bySite))
	for id := range bySite {
		siteIDs = append(siteIDs, id)
	}
	sort.Strings(siteIDs)

	for _, site := range siteIDs {
		links := bySite[site]
		sort.Slice(links, func(i, j int) bool { return links[i].To.String() < links[j].To.String() })

		for i := 0; i < len(links); i++ {
			for j := i + 1; j < len(links); j++ {
				a, c := links[i], links[j]
				if !a.Backhaul || !c.Backhaul {
					continue // geometry exclusion only applies between deployed radio links, not demand access links.
				}
				if a.FromSector == c.FromSector {
					continue // same sector, P2MP/time-division already governs sharing
				}
				sep := angularSeparationDeg(a.AzimuthDeg, c.AzimuthDeg)
				lengthRatio := lengthRatio(a.DistanceMeters, c.DistanceMeters)

				limit := ctx.DiffSectorAngleLimitDeg
				if lengthRatio > ctx.NearFarLengthRatio {
					limit = math.Max(limit, ctx.NearFarAngleLimitDeg)
				}
				if sep >= limit {
					continue
				}

				lA := b.Var(Variable{Name: LinkVar(a.From.String(), a.To.String()), Kind: Binary})
				lC := b.Var(Variable{Name: LinkVar(c.From.String(), c.To.String()), Kind: Binary})

				if ctx.NumberOfChannels <= 1 {
					b.Constrain(Constraint{Name: "deploy_geom[" + lA + "," + lC + "]",
						Terms: []Term{{Var: lA, Coef: 1}, {Var: lC, Coef: 1}}, Sense: LE, RHS: 1})
					continue
				}
				for _, ch := range ctx.Channels() {
					zeta := b.Var(Variable{Name: ZetaVar(a.From.String(), a.To.String(), ch), Kind: Binary})
					// ℓ_A + ℓ_C ≤ 1 + (1-ζ): only binding while ζ marks both
					// links active on the same channel ch.
					b.Constrain(Constraint{Name: "deploy_geom_ch[" + lA + "," + lC + "," + string(rune('0'+ch)) + "]",
						Terms: []Term{{Var: lA, Coef: 1}, {Var: lC, Coef: 1}, {Var: zeta, Coef: 1}}, Sense: LE, RHS: 2})
				}
			}
		}
	}
}

func angularSeparationDeg(a, c float64) float64 {
	d := math.Mod(math.Abs(a-c), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func lengthRatio(a, c float64) float64 {
	if a <= 0 || c <= 0 {
		return 1
	}
	if a > c {
		return a / c
	}
	return c / a
}

// AddCoLocation implements constraint family 10: at most one site
// selected per physical location. Sites sharing a location are every
// device-expansion copy IngestSites produced from one RawSite.
func AddCoLocation(b *Builder, ctx *Context) {
	byLocation := make(map[[3]float64][]string)
	for _, s := range ctx.Graph.SortedSites() {
		key := [3]float64{s.Position.X, s.Position.Y, s.Position.Z}
		byLocation[key] = append(byLocation[key], s.ID.String())
	}
	keys := make([][3]float64, 0, len(byLocation))
	for k := range byLocation {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		if keys[i][1] != keys[j][1] {
			return keys[i][1] < keys[j][1]
		}
		return keys[i][2] < keys[j][2]
	})

	for _, k := range keys {
		ids := byLocation[k]
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		var terms []Term
		for _, id := range ids {
			terms = append(terms, Term{Var: b.Var(Variable{Name: SiteVar(id), Kind: Binary}), Coef: 1})
		}
		b.Constrain(Constraint{Name: "co_location[" + ids[0] + "]", Terms: terms, Sense: LE, RHS: 1})
	}
}

// ChiLinearization implements constraint family 12: the five
// McCormick-style inequalities linearizing χ = τ·[polarity_k = polarity_i]
// for one (site, sector, peer, channel) tuple. Called once per tuple that
// AddSINRClassification needs a χ variable for.
func ChiLinearization(b *Builder, site string, sector int, peer string, channel int, tauVar, polaritySite, polarityPeer string) string {
	chi := b.Var(Variable{Name: ChiVarSector(site, sector, peer, channel), Kind: Continuous, Lower: 0, Upper: 1})
	b.Constrain(Constraint{Name: "chi_le_1_lo[" + chi + "]",
		Terms: []Term{{Var: chi, Coef: 1}, {Var: polaritySite, Coef: -1}, {Var: polarityPeer, Coef: 1}}, Sense: LE, RHS: 1})
	b.Constrain(Constraint{Name: "chi_le_1_hi[" + chi + "]",
		Terms: []Term{{Var: chi, Coef: 1}, {Var: polaritySite, Coef: 1}, {Var: polarityPeer, Coef: -1}}, Sense: LE, RHS: 1})
	b.Constrain(Constraint{Name: "chi_le_tau[" + chi + "]",
		Terms: []Term{{Var: chi, Coef: 1}, {Var: tauVar, Coef: -1}}, Sense: LE, RHS: 0})
	b.Constrain(Constraint{Name: "chi_ge[" + chi + "]",
		Terms: []Term{{Var: chi, Coef: 1}, {Var: tauVar, Coef: -1}, {Var: polaritySite, Coef: -1}, {Var: polarityPeer, Coef: -1}}, Sense: GE, RHS: -2})
	b.Constrain(Constraint{Name: "chi_ge_tau[" + chi + "]",
		Terms: []Term{{Var: chi, Coef: 1}, {Var: tauVar, Coef: -1}, {Var: polaritySite, Coef: 1}, {Var: polarityPeer, Coef: 1}}, Sense: GE, RHS: 0})
	return chi
}

// AddSINRClassification implements constraint family 11 in its linearized
// form: for each link, bound the inverse-SINR proxy S⁻¹ = (N_p + Σ χ·I) /
// RSL by a piecewise upper envelope of class thresholds, forcing μ to the
// coarsest feasible MCS class. noiseMW is the receiver's thermal-noise-plus-
// noise-figure floor in linear milliwatts (mirroring radio.SNRDB's use of
// ThermalNoisePowerDBm/NoiseFigureDB); it enters the same way
// interference_optimization.py's create_exact_capacity_constraints folds
// self.noise_linear[rx_sku] into the SINR-inverse numerator. τ's own
// contribution to the denominator's capacity bound is separately omitted
// from this bound per spec §9's approximation note (carried instead by
// AddFlowCapacity), which covers family 2's denominator only, not N_p here.
func AddSINRClassification(b *Builder, from, to string, channel int, rsl, noiseMW float64, interferers []InterferenceTerm, classes []radio.MCSRow) {
	if len(classes) == 0 {
		return
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].SNRThresholdDB < classes[j].SNRThresholdDB })

	var interferenceTerms []Term
	for _, it := range interferers {
		interferenceTerms = append(interferenceTerms, Term{Var: it.ChiVar, Coef: it.InterferenceMW})
	}

	for _, row := range classes {
		mu := MCSClassVar(from, to, channel, row.MCS)
		upsilon := sinrInverseThreshold(row.SNRThresholdDB)
		// (N_p + Σ χ·I) - υ_m·RSL·μ ≤ M·(1-μ): only binding when μ=1 for
		// this class; N_p is a constant so it moves to the RHS.
		const bigM = 1e6
		terms := append([]Term{}, interferenceTerms...)
		terms = append(terms, Term{Var: mu, Coef: -rsl*upsilon + bigM})
		b.Constrain(Constraint{
			Name:  "sinr_class[" + from + "," + to + "," + mu + "]",
			Terms: terms, Sense: LE, RHS: bigM - noiseMW,
		})
	}
}

// InterferenceTerm is one χ-weighted interferer contribution to the SINR
// denominator of a link's classification constraint.
type InterferenceTerm struct {
	ChiVar         string
	InterferenceMW float64
}

func sinrInverseThreshold(snrThresholdDB float64) float64 {
	// υ_m = 1 / SNR_linear(threshold); a higher threshold (better class)
	// tolerates less relative interference, i.e. a smaller υ.
	snrLinear := math.Pow(10, snrThresholdDB/10)
	if snrLinear <= 0 {
		return 0
	}
	return 1 / snrLinear
}
