// Package srs implements the SM-2 family scheduling core: rating-driven
// state advancement, maturity/retention classification, and due-queue
// ordering. Everything in this package is pure; callers supply the clock
// and persistence.
package srs
