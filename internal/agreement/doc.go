// Package agreement scores how well two raters agree, label by label.
//
// The Scorer pairs both raters' values for every shared label, keeps only
// items where both values are present and parse under the label's kind,
// and applies the statistic configured for that kind: Cohen's kappa for
// binary labels, weighted kappa (or ICC3) for ordinal labels and a
// cross-tabulation for categorical labels. Scoring never aborts the batch.
// A label that cannot be scored is reported with a NaN score and
// StatusNotComputable while the remaining labels carry on.
//
// When either rater's retained values are constant the statistics are
// undefined (zero variance); the boundary rule scores such labels 1.0 when
// both raters gave identical values and 0.0 otherwise.
//
// Nothing in this package performs I/O.
package agreement
