// Package batch runs spectral fits, posterior sampling or sensitivity
// analysis over every centroid of a lattice.
//
// Work is spread over a bounded pool of goroutines. Each centroid gets its
// own random generator seeded from the run seed and its index, so results
// do not depend on scheduling or on the number of workers. A centroid that
// fails is recorded with a [Status] and its error; it never aborts the
// batch and never yields a zero estimate.
package batch
