// Package cart implements the per-session shopping cart: an in-memory item
// table mirrored to a durable key-value slot on every mutation.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dElCIoGio/ghbi-storefront/internal/catalog"
	"github.com/dElCIoGio/ghbi-storefront/internal/kv"
)

// ErrEmptyCart is returned when an operation needs at least one line item.
var ErrEmptyCart = errors.New("cart is empty")

// Item is one durable cart line: a product+variant the shopper intends to
// buy, with display fields snapshotted at add-to-cart time.
type Item struct {
	// ID is the variant id and the unique key within the cart.
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Image     string `json:"image"`

	// Price is the unit price locked when the item was added.
	Price decimal.Decimal `json:"price"`
	// OriginalPrice is the pre-discount reference price; zero when the
	// variant carried no markdown.
	OriginalPrice decimal.Decimal `json:"originalPrice"`

	Quantity int `json:"quantity"`
	// MaxQuantity is the variant's available quantity at add time. The
	// store does not clamp to it; the UI enforces the ceiling.
	MaxQuantity int `json:"maxQuantity"`

	SelectedColor  *catalog.SelectedOption `json:"selectedColor,omitempty"`
	SelectedLength *catalog.SelectedOption `json:"selectedLength,omitempty"`

	SKU string `json:"sku"`
}

// Store holds one session's cart. It owns the item table exclusively; all
// mutation goes through its methods, and every mutation writes the full
// table back to the KV slot before returning.
type Store struct {
	kv  kv.Store
	key string

	mu    sync.Mutex
	items []Item
}

// cartKey namespaces cart blobs within the KV store.
func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// Load reads the session's cart from the KV slot. A missing slot yields an
// empty cart; a corrupt or unreadable one is logged and also yields an
// empty cart, never an error.
func Load(ctx context.Context, store kv.Store, sessionID string, lg *zap.Logger) *Store {
	s := &Store{kv: store, key: cartKey(sessionID)}

	blob, err := store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			lg.Warn("Cart load failed, starting empty",
				zap.String("session", sessionID), zap.Error(err))
		}
		return s
	}

	var items []Item
	if err := json.Unmarshal(blob, &items); err != nil {
		lg.Warn("Corrupt cart blob, resetting to empty",
			zap.String("session", sessionID), zap.Error(err))
		return s
	}

	s.items = items
	return s
}

// Add appends the item, or merges it into an existing line with the same
// variant id by bumping the quantity. Snapshot fields of an existing line
// are never overwritten.
func (s *Store) Add(ctx context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}

	return s.persist(ctx)
}

// Remove deletes the line with the given variant id; removing a missing id
// is a no-op (the table is still flushed).
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return s.persist(ctx)
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less
// removes the line. The quantity is not clamped to MaxQuantity here.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			break
		}
	}
	return s.persist(ctx)
}

// Clear empties the table.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.persist(ctx)
}

// Items returns a copy of the item table in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Total is the sum of price * quantity over all lines. Discounts and
// original prices are a caller concern.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount is the sum of quantities over all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// persist flushes the full item table to the KV slot. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	blob, err := json.Marshal(s.items)
	if err != nil {
		return errors.Wrap(err, "marshal cart")
	}
	if err := s.kv.Set(ctx, s.key, blob); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	return nil
}
