// Package dataset defines the tabular types the pipeline passes between
// stages: the raw string Table produced by the loader, the numeric Frame
// produced by the cleaning stages, the column partition by pipeline role,
// and the label lookups keyed by metric index.
//
// Every stage takes its input by value or behind an accessor and returns a
// new table; nothing mutates a table another stage still holds.
package dataset
