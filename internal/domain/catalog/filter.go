package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lowercases and strips diacritics so "Película" matches "pelicula".
// Transformers are stateful, so the chain is built per call.
func fold(s string) string {
	chain := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	out, _, err := transform.String(chain, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Filter returns the products whose name contains term, compared without
// case or diacritics. An empty term returns the input unchanged.
func Filter(products []Product, term string) []Product {
	term = strings.TrimSpace(term)
	if term == "" {
		return products
	}

	needle := fold(term)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(fold(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}
