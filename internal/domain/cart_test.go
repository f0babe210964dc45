package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func lensLine(id string, plan PlanType, period string, price string) CartLine {
	return CartLine{
		ProductID:          id,
		PlanType:           plan,
		SubscriptionPeriod: period,
		Name:               "Lens " + id,
		Brand:              "Horus",
		UnitPrice:          decimal.RequireFromString(price),
		Quantity:           1,
	}
}

func TestAddItem_ExistingKeyIncrementsQuantity(t *testing.T) {
	cart := NewCart()
	line := lensLine("lens-1", PlanSingle, "", "29.90")

	cart.AddItem(line, 1)
	cart.AddItem(line, 1)

	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
	if cart.ItemCount != 2 {
		t.Errorf("expected item count 2, got %d", cart.ItemCount)
	}
}

func TestAddItem_DifferentPlanTypesAreDistinctLines(t *testing.T) {
	cart := NewCart()
	single := lensLine("lens-1", PlanSingle, "", "29.90")
	sub := lensLine("lens-1", PlanSubscription, "monthly", "29.90")
	sub.SubscriptionUnitPrice = decimal.RequireFromString("24.90")

	cart.AddItem(single, 1)
	cart.AddItem(sub, 1)

	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Items))
	}
	want := decimal.RequireFromString("54.80")
	if !cart.Total.Equal(want) {
		t.Errorf("expected total %s, got %s", want, cart.Total)
	}
}

func TestAddItem_SubscriptionUsesSubscriptionPrice(t *testing.T) {
	cart := NewCart()
	sub := lensLine("lens-1", PlanSubscription, "monthly", "29.90")
	sub.SubscriptionUnitPrice = decimal.RequireFromString("24.90")

	cart.AddItem(sub, 3)

	want := decimal.RequireFromString("74.70")
	if !cart.Total.Equal(want) {
		t.Errorf("expected total %s, got %s", want, cart.Total)
	}
}

func TestAddItem_NonPositiveQuantityIsNoOp(t *testing.T) {
	cart := NewCart()
	cart.AddItem(lensLine("lens-1", PlanSingle, "", "29.90"), 0)
	cart.AddItem(lensLine("lens-1", PlanSingle, "", "29.90"), -2)

	if !cart.IsEmpty() {
		t.Errorf("expected empty cart, got %d lines", len(cart.Items))
	}
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	cart := NewCart()
	line := lensLine("lens-1", PlanSingle, "", "29.90")
	cart.AddItem(line, 4)
	before := cart.ItemCount

	ok := cart.UpdateQuantity(line.Key(), 0)
	if !ok {
		t.Fatal("expected update to report a match")
	}
	if cart.Line(line.Key()) != nil {
		t.Error("expected line to be removed")
	}
	if cart.ItemCount != before-4 {
		t.Errorf("expected item count %d, got %d", before-4, cart.ItemCount)
	}
}

func TestUpdateQuantity_MissingKeyIsNoOp(t *testing.T) {
	cart := NewCart()
	cart.AddItem(lensLine("lens-1", PlanSingle, "", "29.90"), 1)

	ok := cart.UpdateQuantity(LineKey{ProductID: "other", PlanType: PlanSingle}, 5)
	if ok {
		t.Error("expected no match")
	}
	if cart.ItemCount != 1 {
		t.Errorf("expected item count 1, got %d", cart.ItemCount)
	}
}

func TestRemoveItem_RecomputesTotals(t *testing.T) {
	cart := NewCart()
	a := lensLine("lens-a", PlanSingle, "", "10.00")
	b := lensLine("lens-b", PlanSingle, "", "5.50")
	cart.AddItem(a, 2)
	cart.AddItem(b, 1)

	cart.RemoveItem(a.Key())

	if !cart.Total.Equal(decimal.RequireFromString("5.50")) {
		t.Errorf("expected total 5.50, got %s", cart.Total)
	}
	if cart.ItemCount != 1 {
		t.Errorf("expected item count 1, got %d", cart.ItemCount)
	}
}

func TestClear_ResetsAggregate(t *testing.T) {
	cart := NewCart()
	cart.AddItem(lensLine("lens-1", PlanSingle, "", "29.90"), 3)

	cart.Clear()

	if !cart.IsEmpty() || cart.ItemCount != 0 || !cart.Total.IsZero() {
		t.Errorf("expected empty aggregate, got count=%d total=%s", cart.ItemCount, cart.Total)
	}
}

func TestMergeGuest_SumsQuantitiesForMatchingKey(t *testing.T) {
	cart := NewCart()
	line := lensLine("lens-1", PlanSingle, "", "29.90")
	cart.AddItem(line, 2)

	guest := line
	guest.Quantity = 3
	cart.MergeGuest([]CartLine{guest})

	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", cart.Items[0].Quantity)
	}
	want := decimal.RequireFromString("149.50")
	if !cart.Total.Equal(want) {
		t.Errorf("expected total %s, got %s", want, cart.Total)
	}
}

func TestMergeGuest_AppendsUnmatchedLines(t *testing.T) {
	cart := NewCart()
	cart.AddItem(lensLine("lens-a", PlanSingle, "", "10.00"), 1)

	guest := lensLine("lens-b", PlanSubscription, "monthly", "20.00")
	guest.Quantity = 2
	cart.MergeGuest([]CartLine{guest})

	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Items))
	}
	if cart.ItemCount != 3 {
		t.Errorf("expected item count 3, got %d", cart.ItemCount)
	}
}

func TestMergeGuest_IsIdempotentPerGuestCart(t *testing.T) {
	// Merging the same guest snapshot twice doubles quantities; the server
	// migration ledger is what prevents that. This test documents the
	// aggregate-level behavior the ledger exists for.
	cart := NewCart()
	line := lensLine("lens-1", PlanSingle, "", "29.90")
	cart.AddItem(line, 2)

	guest := line
	guest.Quantity = 3
	cart.MergeGuest([]CartLine{guest})
	cart.MergeGuest([]CartLine{guest})

	if cart.Items[0].Quantity != 8 {
		t.Errorf("expected quantity 8 after double merge, got %d", cart.Items[0].Quantity)
	}
}

// TestDerivedTotals_RandomOperationSequences checks the aggregate invariant
// after arbitrary operation sequences: ItemCount equals the sum of line
// quantities and Total equals the sum of effective price times quantity.
func TestDerivedTotals_RandomOperationSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	products := []string{"lens-a", "lens-b", "lens-c", "lens-d"}
	plans := []PlanType{PlanSingle, PlanSubscription}
	periods := []string{"", "monthly", "quarterly"}

	randomLine := func() CartLine {
		line := CartLine{
			ProductID: products[rng.Intn(len(products))],
			PlanType:  plans[rng.Intn(len(plans))],
			Name:      "random lens",
			Brand:     "Horus",
			UnitPrice: decimal.NewFromInt(int64(rng.Intn(50) + 1)),
			Quantity:  1,
		}
		if line.PlanType == PlanSubscription {
			line.SubscriptionPeriod = periods[rng.Intn(len(periods))]
			line.SubscriptionUnitPrice = decimal.NewFromInt(int64(rng.Intn(40) + 1))
		}
		return line
	}

	for run := 0; run < 50; run++ {
		cart := NewCart()
		for op := 0; op < 40; op++ {
			switch rng.Intn(5) {
			case 0, 1:
				cart.AddItem(randomLine(), rng.Intn(4)+1)
			case 2:
				cart.UpdateQuantity(randomLine().Key(), rng.Intn(6)-1)
			case 3:
				cart.RemoveItem(randomLine().Key())
			case 4:
				guest := []CartLine{randomLine(), randomLine()}
				guest[0].Quantity = rng.Intn(3) + 1
				guest[1].Quantity = rng.Intn(3) + 1
				cart.MergeGuest(guest)
			}

			wantCount := 0
			wantTotal := decimal.Zero
			for _, line := range cart.Items {
				if line.Quantity < 1 {
					t.Fatalf("run %d op %d: persisted line with quantity %d", run, op, line.Quantity)
				}
				wantCount += line.Quantity
				wantTotal = wantTotal.Add(line.EffectivePrice().Mul(decimal.NewFromInt(int64(line.Quantity))))
			}
			if cart.ItemCount != wantCount {
				t.Fatalf("run %d op %d: item count %d, want %d", run, op, cart.ItemCount, wantCount)
			}
			if !cart.Total.Equal(wantTotal) {
				t.Fatalf("run %d op %d: total %s, want %s", run, op, cart.Total, wantTotal)
			}
		}
	}
}

func TestClone_IsIndependent(t *testing.T) {
	cart := NewCart()
	line := lensLine("lens-1", PlanSingle, "", "29.90")
	cart.AddItem(line, 1)

	cp := cart.Clone()
	cp.AddItem(line, 5)

	if cart.Items[0].Quantity != 1 {
		t.Errorf("mutating the clone changed the original: quantity %d", cart.Items[0].Quantity)
	}
}
