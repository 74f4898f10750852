// Package segment partitions respondents into clusters over the encoded
// demographic matrix. The cluster count is chosen by an F-statistic-style
// ratio of between- to within-cluster variance over a fixed candidate range;
// the ratio is a heuristic, not a validated statistic, and is kept as the
// default selection rule only.
package segment
