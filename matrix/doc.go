// Package matrix provides a small dense float64 matrix used to stage
// coefficient data before handing it to a solver backend, and to hold
// the pairwise interference matrix the pipeline's interference phase
// builds from link RSL values.
//
// It is deliberately narrow: the planner's heavy numerical lifting (LP
// relaxation) is delegated to gonum.org/v1/gonum; this package only
// covers the bookkeeping (bounds-checked storage, element-wise
// combination) that the rest of the planner builds on top of.
package matrix
