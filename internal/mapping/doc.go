// Package mapping turns trajectory features into bounded musical controls.
//
// Each numeric control has a declared [Range]; every value passes through
// [Range.Sanitize] before it leaves the package, so callers only ever see
// finite, in-range values. Percussion lanes draw from an injected random
// source and only contain the symbols in [Hits].
package mapping
