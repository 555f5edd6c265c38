package acl

import (
	"fmt"
)

// Translator converts one external DTO into a domain value.
type Translator[E, D any] func(ext *E) (D, error)

// TranslateSlice applies translate to every item and stops at the first
// failure, reporting its index.
func TranslateSlice[E, D any](items []E, translate Translator[E, D]) ([]D, error) {
	out := make([]D, 0, len(items))

	for i := range items {
		d, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		out = append(out, d)
	}

	return out, nil
}
