// Package graphio reads and writes dependency graphs.
//
// Two formats are supported:
//
//   - Weighted edge lists, one "u v w" triple per line with '#' comments,
//     the format produced by networkx write_weighted_edgelist. Operation
//     labels must be the dense range 0..n-1; n is the number of distinct
//     labels, so isolated operations cannot be expressed.
//   - YAML documents with an explicit opcount and an edge list, parsed
//     strictly (unknown keys are errors).
//
// Load picks the format from the file extension.
package graphio
