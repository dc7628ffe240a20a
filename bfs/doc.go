// SPDX-License-Identifier: MIT

// Package bfs implements breadth-first reachability over core.Graph,
// O(V+E), with hooks (OnEnqueue/OnDequeue/OnVisit), MaxDepth, and
// neighbor filtering. pipeline/prune uses it post-selection to confirm
// every demand site still has a path back to a hub; see WithMaxDepth,
// WithFilterNeighbor, and BFSResult.PathTo for the pieces it composes.
package bfs
