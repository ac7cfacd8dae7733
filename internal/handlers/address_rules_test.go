package handlers

import (
	"testing"

	"laundry/internal/models"
)

func TestFirstAddressAlwaysBecomesDefault(t *testing.T) {
	if !resolveDefaultFlag(false, 0) {
		t.Fatal("expected first address to be forced default even when not requested")
	}
	if !resolveDefaultFlag(true, 0) {
		t.Fatal("expected first address to be default when requested")
	}
	if resolveDefaultFlag(false, 2) {
		t.Fatal("expected later address to stay non-default when not requested")
	}
}

func TestDefaultCountStaysAtOneAcrossMutations(t *testing.T) {
	var addresses []models.Address

	add := func(id string, requested bool) {
		isDefault := resolveDefaultFlag(requested, len(addresses))
		if isDefault {
			unsetDefaults(addresses)
		}
		addresses = append(addresses, models.Address{ID: id, IsDefault: isDefault})
	}

	remove := func(id string) {
		index := findAddressIndex(addresses, id)
		if index == -1 {
			t.Fatalf("address %s not found", id)
		}
		wasDefault := addresses[index].IsDefault
		addresses = append(addresses[:index], addresses[index+1:]...)
		promoteDefaultAfterDelete(addresses, wasDefault)
	}

	check := func(step string) {
		want := 0
		if len(addresses) > 0 {
			want = 1
		}
		if got := countDefaults(addresses); got != want {
			t.Fatalf("%s: expected %d default addresses, got %d", step, want, got)
		}
	}

	add("a", false)
	check("after first add")

	add("b", false)
	add("c", true)
	check("after adding default c")
	if !addresses[findAddressIndex(addresses, "c")].IsDefault {
		t.Fatal("expected c to hold the default flag")
	}

	remove("c")
	check("after deleting default c")

	remove("a")
	remove("b")
	check("after deleting everything")
}

func TestDeleteDefaultPromotesFirstRemaining(t *testing.T) {
	addresses := []models.Address{
		{ID: "a", IsDefault: false},
		{ID: "b", IsDefault: false},
	}
	promoteDefaultAfterDelete(addresses, true)

	if !addresses[0].IsDefault {
		t.Fatal("expected first remaining address to be promoted to default")
	}
	if addresses[1].IsDefault {
		t.Fatal("expected only one default after promotion")
	}
}

func TestDeleteNonDefaultLeavesFlagAlone(t *testing.T) {
	addresses := []models.Address{
		{ID: "a", IsDefault: false},
		{ID: "b", IsDefault: true},
	}
	promoteDefaultAfterDelete(addresses, false)

	if addresses[0].IsDefault {
		t.Fatal("expected a to stay non-default")
	}
	if !addresses[1].IsDefault {
		t.Fatal("expected b to keep the default flag")
	}
}

func TestSortDefaultFirstIsStable(t *testing.T) {
	addresses := []models.Address{
		{ID: "a"},
		{ID: "b"},
		{ID: "c", IsDefault: true},
		{ID: "d"},
	}

	sorted := sortDefaultFirst(addresses)

	wantOrder := []string{"c", "a", "b", "d"}
	for i, want := range wantOrder {
		if sorted[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, sorted[i].ID)
		}
	}

	// Input order is untouched.
	if addresses[0].ID != "a" || addresses[2].ID != "c" {
		t.Fatal("expected source slice to keep its original order")
	}
}
