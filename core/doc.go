// SPDX-License-Identifier: MIT

// Package core provides the graph the planner builds its topology on:
// a single Graph type composing directed/undirected, weighted/unweighted,
// multi-edge, self-loop, and mixed-direction behavior through functional
// options, backed by constant-time nested-map adjacency and atomic
// "e1", "e2", ... edge-id generation. topology.CandidateGraph wraps it
// with typed ids; bfs.BFS, dijkstra.Dijkstra, and flow.Dinic walk it
// directly through Neighbors/Edges/Vertices.
package core
