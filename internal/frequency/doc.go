// Package frequency summarizes how two raters used a rating scale across
// document sources: merged rating tables, per-source value frequencies,
// weighted averages, element presence rates and goal counts.
package frequency
