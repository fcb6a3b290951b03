// Package ev converts market quotes into probability and expected-value
// assessments. Probabilities come from a ranked chain of sources that always
// ends with a deterministic heuristic, so analysis never fails.
package ev
