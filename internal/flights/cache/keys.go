package cache

import (
	"fmt"
	"time"

	"skybook/pkg/model"
)

const (
	flightKeyPrefix = "flight:"
	generationKey   = "flights:gen"
)

func flightKey(id string) string {
	return flightKeyPrefix + id
}

// searchKey folds the query and the current generation into one key, so a
// single INCR on the generation invalidates every cached listing at once.
func searchKey(gen Generation, q model.FlightSearch) string {
	date := ""
	if q.DepartureDate != nil {
		date = q.DepartureDate.UTC().Format(time.DateOnly)
	}
	return fmt.Sprintf("flights:g%d:search:%s:%s:%s:%d", gen, q.Origin, q.Destination, date, q.Limit)
}

func listKey(gen Generation, limit int) string {
	return fmt.Sprintf("flights:g%d:all:%d", gen, limit)
}
