// Package features derives per-step series from a trajectory.
//
// Every series in a [Set] has the trajectory's length and shares its
// indexing. Normalization maps an axis to [0, 1]; axes with no usable range
// (constant, empty, or without finite samples) collapse to [Midpoint].
package features
