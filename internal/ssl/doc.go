// Package ssl extracts sound-scattering layers (SSLs) from an echogram.
//
// Stages, in pipeline order:
//
//	DetectSignal       multi-scale above/below running-median detector
//	RowFilter          consensus smoothing along pings
//	ColumnFilter       consensus smoothing along depth
//	Label              8-connected aggregates, small ones dropped
//	VerticalMerge      close runs in a column joined
//	FillInternalGaps   enclosed background holes filled
//	BreakIntoFeatures  column-sequential tracking that splits branches
//	RemoveSmallFeatures, FeatureMedian, Summarize
//
// Extract runs the whole chain with a Params set. Every function is a pure
// function of its inputs and returns freshly allocated masks.
package ssl
