// SPDX-License-Identifier: MIT

// Package flow implements Dinic's maximum-flow algorithm (level graph
// + blocking flow) over core.Graph, O(E·√V) on unit-capacity networks.
// pipeline/prune uses it as a site-disjoint-path heuristic bounding how
// many independent routes exist between a POP and a DN before
// committing that pair to the candidate link set.
package flow
