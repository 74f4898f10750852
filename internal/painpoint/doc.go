// Package painpoint derives the per-respondent, per-metric pain scores and
// selects the metrics worth modeling. A pain score is the respondent's
// importance rating minus their satisfaction rating for the same metric;
// the score is missing whenever either side is missing, never defaulted.
package painpoint
