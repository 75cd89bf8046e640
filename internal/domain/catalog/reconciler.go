package catalog

import (
	"context"
	"errors"
	"strings"

	perrors "comicstore-go/internal/platform/errors"
	"comicstore-go/internal/platform/storage"
)

// Logger is the logging behaviour required by the reconciler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Reconciler produces the merged catalog. Every List call re-reads persisted
// state; nothing is cached and persisted storage is never rewritten by List.
type Reconciler struct {
	store  storage.Store
	logger Logger
}

func NewReconciler(store storage.Store, logger Logger) (*Reconciler, error) {
	if store == nil {
		return nil, perrors.New(perrors.KindCatalog, "catalog.new", "reconciler requires a store")
	}
	if logger == nil {
		return nil, perrors.New(perrors.KindCatalog, "catalog.new", "reconciler requires a logger")
	}
	return &Reconciler{store: store, logger: logger}, nil
}

// List returns builtins followed by the persisted user-created entries, with
// colliding or missing ids reassigned past the current maximum. Reassignment
// is presentation-time only: the stored blob keeps its original ids.
// Unreadable persisted data degrades to the built-in set alone.
func (r *Reconciler) List(ctx context.Context) []Product {
	merged := Builtins()

	saved := r.loadSaved(ctx)
	if len(saved) == 0 {
		return merged
	}

	nextID := maxID(merged, saved) + 1
	claimed := make(map[int]bool, len(merged)+len(saved))
	for _, p := range merged {
		claimed[p.ID] = true
	}

	for _, p := range saved {
		if p.ID <= 0 || claimed[p.ID] {
			p.ID = nextID
			nextID++
		}
		claimed[p.ID] = true
		merged = append(merged, p)
	}
	return merged
}

// Find returns the product with the given id from the merged catalog.
func (r *Reconciler) Find(ctx context.Context, id int) (Product, bool) {
	for _, p := range r.List(ctx) {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Append validates and persists a user-created product, assigning it the
// next free id over the merged catalog. The stored product is returned.
func (r *Reconciler) Append(ctx context.Context, p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Product{}, perrors.New(perrors.KindCatalog, "catalog.append", "product name is required")
	}
	if p.Price <= 0 {
		return Product{}, perrors.New(perrors.KindCatalog, "catalog.append", "product price must be positive")
	}

	saved := r.loadSaved(ctx)
	p.ID = maxID(Builtins(), saved) + 1
	saved = append(saved, p)

	raw, err := storage.Encode(saved)
	if err != nil {
		return Product{}, perrors.Wrap(perrors.KindStorage, "catalog.append", "failed to encode products", err)
	}
	if err := r.store.Set(ctx, storage.KeyProducts, raw); err != nil {
		return Product{}, perrors.Wrap(perrors.KindStorage, "catalog.append", "failed to persist products", err)
	}

	r.logger.Info("catalog: stored user product %q (id=%d)", p.Name, p.ID)
	return p, nil
}

func (r *Reconciler) loadSaved(ctx context.Context) []Product {
	raw, err := r.store.Get(ctx, storage.KeyProducts)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			r.logger.Warn("catalog: failed to read persisted products: %v", err)
		}
		return nil
	}

	var saved []Product
	if err := storage.Decode(raw, &saved); err != nil {
		r.logger.Warn("catalog: persisted products are unreadable, using builtins only: %v", err)
		return nil
	}
	return saved
}

func maxID(groups ...[]Product) int {
	highest := 0
	for _, group := range groups {
		for _, p := range group {
			if p.ID > highest {
				highest = p.ID
			}
		}
	}
	return highest
}
