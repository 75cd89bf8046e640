// Package commerce owns the in-memory cart and the persisted purchase
// ledger. The cart holds one line per product id; checkout merges lines into
// the ledger by summing quantities, so the stored quantity for a product is
// cumulative across every checkout ever made.
package commerce

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"comicstore-go/internal/domain/catalog"
	"comicstore-go/internal/domain/eventbus"
	perrors "comicstore-go/internal/platform/errors"
	"comicstore-go/internal/platform/storage"
)

// Logger is the logging behaviour required by the ledger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Line is a cart entry: a product snapshot (price frozen at add time) and a
// positive quantity.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// PurchaseRecord is a persisted ledger entry: at most one per product id,
// quantity cumulative across all purchases.
type PurchaseRecord struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Receipt summarises a successful checkout.
type Receipt struct {
	ID        string    `json:"id"`
	Lines     []Line    `json:"lines"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// Ledger is the single owner of cart state. Consumers read copies; mutation
// happens only through the operations below.
type Ledger struct {
	store  storage.Store
	logger Logger
	bus    *eventbus.Bus

	mu    sync.Mutex
	lines []Line
}

func NewLedger(store storage.Store, logger Logger, bus *eventbus.Bus) (*Ledger, error) {
	if store == nil {
		return nil, perrors.New(perrors.KindCommerce, "commerce.new", "ledger requires a store")
	}
	if logger == nil {
		return nil, perrors.New(perrors.KindCommerce, "commerce.new", "ledger requires a logger")
	}
	return &Ledger{
		store:  store,
		logger: logger,
		bus:    bus,
	}, nil
}

// AddItem merges the product into the cart, summing quantities for a product
// already present. A zero-value product is ignored; quantities below one
// default to one.
func (l *Ledger) AddItem(p catalog.Product, quantity int) {
	if p.ID == 0 {
		return
	}
	if quantity < 1 {
		quantity = 1
	}

	l.mu.Lock()
	merged := false
	for i := range l.lines {
		if l.lines[i].Product.ID == p.ID {
			l.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		l.lines = append(l.lines, Line{Product: p, Quantity: quantity})
	}
	l.mu.Unlock()

	l.bus.Publish(eventbus.TopicCartChanged, l.Lines())
}

// RemoveItem drops the line for the product id entirely.
func (l *Ledger) RemoveItem(id int) {
	l.mu.Lock()
	kept := l.lines[:0]
	for _, line := range l.lines {
		if line.Product.ID != id {
			kept = append(kept, line)
		}
	}
	l.lines = kept
	l.mu.Unlock()

	l.bus.Publish(eventbus.TopicCartChanged, l.Lines())
}

// UpdateQuantity sets the quantity for a product id; a quantity of zero or
// less removes the line.
func (l *Ledger) UpdateQuantity(id, quantity int) {
	if quantity <= 0 {
		l.RemoveItem(id)
		return
	}

	l.mu.Lock()
	for i := range l.lines {
		if l.lines[i].Product.ID == id {
			l.lines[i].Quantity = quantity
			break
		}
	}
	l.mu.Unlock()

	l.bus.Publish(eventbus.TopicCartChanged, l.Lines())
}

// Clear empties the cart.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.lines = nil
	l.mu.Unlock()

	l.bus.Publish(eventbus.TopicCartChanged, l.Lines())
}

// Lines returns a copy of the current cart contents.
func (l *Ledger) Lines() []Line {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// TotalCount is the sum of quantities across all lines.
func (l *Ledger) TotalCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, line := range l.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice is the sum of price times quantity across all lines.
func (l *Ledger) TotalPrice() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0.0
	for _, line := range l.lines {
		total += line.Product.Price * float64(line.Quantity)
	}
	return total
}

// Checkout merges the cart into the persisted purchase ledger and clears the
// cart. An empty cart is a no-op returning a nil receipt. If persisting the
// merged ledger fails the cart is left intact so the order can be retried.
func (l *Ledger) Checkout(ctx context.Context) (*Receipt, error) {
	lines := l.Lines()
	if len(lines) == 0 {
		return nil, nil
	}

	records := l.Library(ctx)

	index := make(map[int]int, len(records))
	for i, record := range records {
		index[record.Product.ID] = i
	}
	for _, line := range lines {
		if i, ok := index[line.Product.ID]; ok {
			records[i].Quantity += line.Quantity
		} else {
			index[line.Product.ID] = len(records)
			records = append(records, PurchaseRecord{
				Product:  line.Product,
				Quantity: line.Quantity,
			})
		}
	}

	raw, err := storage.Encode(records)
	if err != nil {
		return nil, perrors.Wrap(perrors.KindCommerce, "commerce.checkout", "failed to encode purchase ledger", err)
	}
	if err := l.store.Set(ctx, storage.KeyLibrary, raw); err != nil {
		l.logger.Error("commerce: failed to persist purchase ledger: %v", err)
		return nil, perrors.Wrap(perrors.KindStorage, "commerce.checkout", "failed to save purchases", err)
	}

	receipt := &Receipt{
		ID:        uuid.NewString(),
		Lines:     lines,
		Total:     totalOf(lines),
		CreatedAt: time.Now(),
	}

	// Clearing is a dependent step: it only happens after the write landed.
	l.mu.Lock()
	l.lines = nil
	l.mu.Unlock()

	l.logger.Info("commerce: checkout %s completed, %d lines", receipt.ID, len(receipt.Lines))
	l.bus.Publish(eventbus.TopicCartChanged, []Line{})
	l.bus.Publish(eventbus.TopicCheckoutCompleted, *receipt)
	return receipt, nil
}

// Library returns the persisted purchase records. Unreadable data degrades
// to an empty ledger; it is logged, never surfaced.
func (l *Ledger) Library(ctx context.Context) []PurchaseRecord {
	raw, err := l.store.Get(ctx, storage.KeyLibrary)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			l.logger.Warn("commerce: failed to read purchase ledger: %v", err)
		}
		return nil
	}

	var records []PurchaseRecord
	if err := storage.Decode(raw, &records); err != nil {
		l.logger.Warn("commerce: purchase ledger is unreadable, starting empty: %v", err)
		return nil
	}
	return records
}

func totalOf(lines []Line) float64 {
	total := 0.0
	for _, line := range lines {
		total += line.Product.Price * float64(line.Quantity)
	}
	return total
}
