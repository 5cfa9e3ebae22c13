package editing

import (
	"testing"
	"time"

	"banhangso/client/internal/domain"
)

func TestTargetKinds(t *testing.T) {
	none := None[domain.Customer]()
	if none.Kind() != TargetNone || none.IsOpen() {
		t.Fatalf("expected closed target, got kind %d", none.Kind())
	}

	create := CreateNew[domain.Customer]()
	if create.Kind() != TargetCreate || !create.IsOpen() {
		t.Fatalf("expected create target, got kind %d", create.Kind())
	}

	edit := Edit(domain.Customer{ID: "c1", Name: "A"})
	if edit.Kind() != TargetEdit || !edit.IsOpen() {
		t.Fatalf("expected edit target, got kind %d", edit.Kind())
	}
}

func TestValueOnlyForEditTargets(t *testing.T) {
	if _, ok := None[domain.Customer]().Value(); ok {
		t.Fatalf("closed target must not expose a value")
	}
	if _, ok := CreateNew[domain.Customer]().Value(); ok {
		t.Fatalf("create target must not expose a value")
	}
	value, ok := Edit(domain.Customer{ID: "c1"}).Value()
	if !ok || value.ID != "c1" {
		t.Fatalf("expected edit value, got %+v ok=%v", value, ok)
	}
}

func TestCreateTargetsGetDistinctDraftIDs(t *testing.T) {
	a := CreateNew[domain.Product]()
	b := CreateNew[domain.Product]()
	if a.DraftID() == "" || b.DraftID() == "" {
		t.Fatalf("expected draft ids, got %q %q", a.DraftID(), b.DraftID())
	}
	if a.DraftID() == b.DraftID() {
		t.Fatalf("two create flows share a draft id %q", a.DraftID())
	}
	if Edit(domain.Product{ID: "p1"}).DraftID() != "" {
		t.Fatalf("edit target must not carry a draft id")
	}
}

func TestSlotRevisionBumpsOnEverySet(t *testing.T) {
	var slot Slot[domain.Customer]
	target := Edit(domain.Customer{ID: "c1"})

	slot.Set(target)
	_, rev1 := slot.Get()
	// Re-opening the same record must still reset the form.
	slot.Set(target)
	_, rev2 := slot.Get()
	if rev2 <= rev1 {
		t.Fatalf("expected revision bump on identical target, got %d then %d", rev1, rev2)
	}
}

func TestSlotClear(t *testing.T) {
	var slot Slot[domain.Invoice]
	slot.Set(CreateNew[domain.Invoice]())
	slot.Clear()
	target, _ := slot.Get()
	if target.IsOpen() {
		t.Fatalf("expected closed slot after clear")
	}
}

func TestWatchDeliversOnSet(t *testing.T) {
	var slot Slot[domain.Customer]
	ch, cancel := slot.Watch()
	defer cancel()

	slot.Set(CreateNew[domain.Customer]())
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("expected wake-up after set")
	}

	cancel()
	slot.Set(None[domain.Customer]())
	select {
	case <-ch:
		t.Fatalf("expected no delivery after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCoordinatorSlotsAreIndependent(t *testing.T) {
	c := NewCoordinator()
	c.EditingCustomer.Set(CreateNew[domain.Customer]())
	c.PayingCustomerID.Set(Edit("c1"))

	if target, _ := c.EditingCustomer.Get(); target.Kind() != TargetCreate {
		t.Fatalf("expected customer slot open for create")
	}
	if target, _ := c.EditingSupplier.Get(); target.IsOpen() {
		t.Fatalf("expected supplier slot untouched")
	}
	paying, _ := c.PayingCustomerID.Get()
	if id, ok := paying.Value(); !ok || id != "c1" {
		t.Fatalf("expected paying slot holding the customer id, got %q ok=%v", id, ok)
	}

	c.EditingCustomer.Clear()
	if target, _ := c.PayingCustomerID.Get(); !target.IsOpen() {
		t.Fatalf("clearing one slot must not close another")
	}
}
