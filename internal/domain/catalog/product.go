// Package catalog merges the built-in product set with user-created entries
// persisted in local storage, guaranteeing globally unique identifiers.
package catalog

// Product is a purchasable catalog entry. IDs are unique across the merged
// catalog; built-in products own the stable small integers.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description,omitempty"`
}
