package cache

import (
	"context"
	"testing"
	"time"

	"skybook/pkg/model"
)

func TestListingKeysChangeWithGeneration(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	q := model.FlightSearch{Origin: "JFK", Destination: "LAX", DepartureDate: &date, Limit: 50}

	if searchKey(1, q) == searchKey(2, q) {
		t.Error("expected a generation bump to move search keys to a new namespace")
	}
	if listKey(1, 100) == listKey(2, 100) {
		t.Error("expected a generation bump to move list keys to a new namespace")
	}

	other := q
	other.Destination = "SFO"
	if searchKey(1, q) == searchKey(1, other) {
		t.Error("expected distinct queries to map to distinct keys")
	}
}

func TestSetDropsUnknownGeneration(t *testing.T) {
	// The nil client guarantees redis is never touched; reaching it would
	// panic the test.
	c := &redisFlightCache{}

	c.SetSearch(context.Background(), model.FlightSearch{Origin: "JFK"}, GenerationUnknown, nil)
	c.SetList(context.Background(), 10, GenerationUnknown, nil)
}
