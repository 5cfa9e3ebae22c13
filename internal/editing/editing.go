package editing

import (
	"sync"

	"banhangso/client/internal/domain"
	"banhangso/client/internal/xid"
)

type TargetKind int

const (
	// TargetNone: the overlay is closed.
	TargetNone TargetKind = iota
	// TargetCreate: create flow, no server identity yet.
	TargetCreate
	// TargetEdit: editing an existing entity.
	TargetEdit
)

// Target is the tri-state editing target: closed, create-new, or
// editing a concrete value. Kind() makes the three states exhaustively
// checkable; there is no nil and no magic sentinel value.
type Target[T any] struct {
	kind    TargetKind
	value   T
	draftID string
}

func None[T any]() Target[T] { return Target[T]{kind: TargetNone} }

// CreateNew opens a create flow. The target carries a client-local
// draft id so unsaved state can be referenced before the server assigns
// an identity.
func CreateNew[T any]() Target[T] {
	return Target[T]{kind: TargetCreate, draftID: xid.New("draft")}
}

func Edit[T any](value T) Target[T] {
	return Target[T]{kind: TargetEdit, value: value}
}

func (t Target[T]) Kind() TargetKind { return t.kind }

func (t Target[T]) IsOpen() bool { return t.kind != TargetNone }

// Value returns the entity being edited; ok is false unless the kind is
// TargetEdit.
func (t Target[T]) Value() (T, bool) {
	if t.kind != TargetEdit {
		var zero T
		return zero, false
	}
	return t.value, true
}

// DraftID returns the client-local id of a create flow; empty otherwise.
func (t Target[T]) DraftID() string { return t.draftID }

// Slot holds the current target for exactly one overlay. Every Set bumps
// the revision, even for an equal target, so the owning overlay
// re-initializes its form state instead of reusing what a previous
// target left behind.
type Slot[T any] struct {
	mu       sync.Mutex
	target   Target[T]
	revision uint64
	watchers map[chan struct{}]struct{}
}

func (s *Slot[T]) Set(target Target[T]) {
	s.mu.Lock()
	s.target = target
	s.revision++
	watchers := make([]chan struct{}, 0, len(s.watchers))
	for ch := range s.watchers {
		watchers = append(watchers, ch)
	}
	s.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Slot[T]) Clear() { s.Set(None[T]()) }

// Get returns the current target and the revision it was set at.
func (s *Slot[T]) Get() (Target[T], uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.revision
}

// Watch delivers a wake-up on every Set. Cancel on unmount.
func (s *Slot[T]) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	if s.watchers == nil {
		s.watchers = make(map[chan struct{}]struct{})
	}
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.watchers, ch)
		s.mu.Unlock()
	}
	return ch, cancel
}

// Coordinator aggregates every editing slot. Slots are independent:
// several may be open at once because they drive independent overlays,
// but one slot drives exactly one overlay.
type Coordinator struct {
	EditingProduct        Slot[domain.Product]
	EditingCategory       Slot[domain.Category]
	EditingCustomer       Slot[domain.Customer]
	EditingSupplier       Slot[domain.Supplier]
	EditingInvoice        Slot[domain.Invoice]
	EditingOrder          Slot[domain.Order]
	EditingQuote          Slot[domain.Quote]
	EditingPurchase       Slot[domain.Purchase]
	EditingDelivery       Slot[domain.Delivery]
	EditingInventoryCheck Slot[domain.InventoryCheck]
	EditingCashFlow       Slot[domain.CashFlowTransaction]

	PayingCustomerID Slot[string]
	PayingSupplierID Slot[string]

	PrintingInvoiceID  Slot[string]
	PrintingOrderID    Slot[string]
	PrintingDeliveryID Slot[string]
	PrintingVoucherID  Slot[string]
}

func NewCoordinator() *Coordinator { return &Coordinator{} }
