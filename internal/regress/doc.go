// Package regress fits the per-metric pain-score models: an L1-penalized
// linear regression of one metric's pain scores on the hand-selected
// predictor set, with the penalty strength chosen by K-fold cross-validation
// minimizing mean squared error. Fold assignment is seeded per metric, so
// the per-metric fits are independent and safe to run in parallel without
// changing any number in the output.
package regress
