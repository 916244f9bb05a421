// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts carry no persistence or transport detail; they name the
// semantic write boundaries whose invariants must commit atomically.
package aggregates
