// SPDX-License-Identifier: MIT

// Package dijkstra implements Dijkstra's shortest-path algorithm,
// O((V+E) log V), over core.Graph. WithMaxDistance bounds exploration;
// WithInfEdgeThreshold treats a link at or above a weight as
// impassable without deleting the edge. pipeline/flowanalyzer calls it
// with WithReturnPath only, once per POP.
package dijkstra
