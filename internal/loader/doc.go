// Package loader reads the raw inputs: the survey workbook (response sheet
// plus the metric and profiling label lookup sheets) via excelize, and the
// electricity-consumption CSV via a gota dataframe. The loader produces
// string tables only; all typing happens downstream in the cleaning stages.
package loader
