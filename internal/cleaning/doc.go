// Package cleaning turns raw survey text into numbers: the rating
// normalizer extracts leading numeric codes from rating cells, and the
// demographic encoder recodes binary indicators, assigns ordinal ranks from
// the configured mapping tables, standardizes each column, and imputes
// missing cells with the column median of the standardized values.
//
// Each transform takes its input table and returns a new frame; the input is
// never mutated.
package cleaning
