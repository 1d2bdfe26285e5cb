// Package cart owns the in-memory shopping cart. Every operation is
// synchronous and never touches the network: cart edits must feel
// instantaneous and must not fail on connectivity. The engine publishes
// its state through an observable the UI renders directly.
package cart

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tiendasuplementacion/storefront/internal/domain"
	"github.com/tiendasuplementacion/storefront/internal/observable"
)

// ErrOutOfStock is returned when adding a product whose stock is exhausted
// or already fully represented in the cart. It is a local validation
// failure, reported to the caller and never routed through the async
// error channel.
var ErrOutOfStock = errors.New("product is out of stock")

type Engine struct {
	mu    sync.Mutex
	lines []domain.CartLine // insertion order, at most one line per product
	state *observable.Value[domain.CartState]
	log   *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	return &Engine{
		state: observable.NewValue(domain.CartState{}),
		log:   log,
	}
}

// State is the observable cart projection rendered by the UI.
func (e *Engine) State() *observable.Value[domain.CartState] { return e.state }

// AddToCart adds one unit of the product, creating a line or incrementing
// the existing one. Fails with ErrOutOfStock, without mutating anything,
// when the product has no stock or the increment would exceed it.
func (e *Engine) AddToCart(p domain.Product) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p.Stock <= 0 {
		e.log.Info("rejected add to cart", zap.Int64("product_id", p.ID), zap.Int("stock", p.Stock))
		return ErrOutOfStock
	}

	for i := range e.lines {
		if e.lines[i].Product.ID == p.ID {
			if e.lines[i].Quantity+1 > p.Stock {
				e.log.Info("rejected add to cart",
					zap.Int64("product_id", p.ID),
					zap.Int("quantity", e.lines[i].Quantity),
					zap.Int("stock", p.Stock))
				return ErrOutOfStock
			}
			e.lines[i].Product = p // adopt the fresher snapshot
			e.lines[i].Quantity++
			e.publish()
			return nil
		}
	}

	e.lines = append(e.lines, domain.CartLine{Product: p, Quantity: 1})
	e.publish()
	return nil
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less
// removes the line; a quantity above the product's stock is clamped to
// stock. The UI disables the increment control at the boundary, but the
// engine enforces the invariant independently.
func (e *Engine) UpdateQuantity(productID int64, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].Product.ID != productID {
			continue
		}
		if quantity <= 0 {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
		} else {
			if quantity > e.lines[i].Product.Stock {
				quantity = e.lines[i].Product.Stock
			}
			e.lines[i].Quantity = quantity
		}
		e.publish()
		return
	}
}

// RemoveFromCart removes the product's line. No-op when absent.
func (e *Engine) RemoveFromCart(productID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].Product.ID == productID {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			e.publish()
			return
		}
	}
}

// Clear empties the cart. Used after a successful checkout and on logout.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = nil
	e.publish()
}

// TotalPrice is Σ(price × quantity) over all lines.
func (e *Engine) TotalPrice() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return totalPrice(e.lines)
}

// TotalItemCount is Σ(quantity) over all lines.
func (e *Engine) TotalItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return totalItemCount(e.lines)
}

// Lines returns a copy of the cart lines in insertion order.
func (e *Engine) Lines() []domain.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// publish recomputes the derived totals and pushes a fresh snapshot.
// Callers hold e.mu.
func (e *Engine) publish() {
	lines := make([]domain.CartLine, len(e.lines))
	copy(lines, e.lines)
	e.state.Set(domain.CartState{
		Lines:          lines,
		TotalPrice:     totalPrice(lines),
		TotalItemCount: totalItemCount(lines),
	})
}

func totalPrice(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func totalItemCount(lines []domain.CartLine) int {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}
