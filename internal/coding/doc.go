// Package coding models two raters' codings of a document corpus against a
// shared rubric.
//
// A Coding maps (item, label) pairs to raw cell values as they were read
// from a spreadsheet export. Codings are immutable once built; every
// transformation downstream (normalization, recoding, merging) produces new
// values rather than editing the coding in place.
//
// Labels come in three kinds. Binary labels hold Yes/No flags, ordinal
// labels hold ratings on a fixed ordered scale and categorical labels hold
// free-form class names such as the "Goal of articulation" label.
package coding
