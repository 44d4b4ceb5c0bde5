package extract

import (
	"github.com/gaurav-prasanna/postpipe/core/dom"
)

// Strategy is one named way of locating a value on a page. Strategies for the
// same value are tried in order until one returns a non-empty result.
type Strategy[T any] struct {
	Name string
	Find func(page *dom.Page) (T, bool)
}

// FirstMatch runs strategies in order and returns the first hit together with
// the name of the strategy that produced it. The zero value and "" mean no hit.
func FirstMatch[T any](page *dom.Page, strategies []Strategy[T]) (T, string) {
	for _, s := range strategies {
		if v, ok := s.Find(page); ok {
			return v, s.Name
		}
	}
	var zero T
	return zero, ""
}

// StrategyNames lists strategy names in the order they are tried.
func StrategyNames[T any](strategies []Strategy[T]) []string {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name
	}
	return names
}
