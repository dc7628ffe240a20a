// Package terramesh plans 60GHz point-to-point and point-to-multipoint
// wireless mesh networks: given a set of candidate sites, buildings, and
// terrain, it validates line-of-sight between every plausible link,
// scores radio performance, assembles a candidate topology graph, and
// runs a multi-phase MILP optimization pipeline to select a minimum-cost,
// interference-aware network that connects every demand site to a point
// of presence.
//
// Under the hood, the planner is organized as:
//
//	geo/          — 3D line-segment geometry and raster cell iteration over a link's footprint
//	los/          — line-of-sight validation (cylindrical and ellipsoidal Fresnel models)
//	radio/        — link budget (RSL, FSPL, SNR), MCS classification, interference matrix
//	topology/     — candidate graph assembly: sites, sectors, links, demand placement
//	ilp/          — deterministic MILP variable and constraint generation
//	solver/       — LP/MILP solving (gonum simplex + branch-and-bound)
//	pipeline/     — phase sequencing: POP proposal, min-cost base network, redundancy, flow analysis
//	config/       — TOML-backed planner configuration
//	planererrors/ — typed configuration, data, infeasibility and timeout errors
//	report/       — CSV and topology file output
//	cmd/planner/  — command-line entrypoint
//
// It reuses general-purpose graph infrastructure from core/ (the vertex
// and edge store), flow/ (Dinic's max-flow, used for site-splitting
// pruning and reachability checks), bfs/ and dijkstra/ (used by the
// optimization pipeline for cheap reachability and distance-ranking
// heuristics ahead of the MILP solve), and matrix/ (dense coefficient
// staging for the interference matrix and solver input).
package terramesh
