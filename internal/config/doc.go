// Package config holds the survey analyzer configuration: input file
// locations and sheet names, the column-prefix role table, the hand-authored
// ordinal mapping tables, and the analysis thresholds and seeds.
//
// Configuration is loaded from environment variables (SURVEY_ prefix) and an
// optional YAML file, with environment taking precedence. All values have
// working defaults so the analyzer runs with nothing but an input workbook.
package config
