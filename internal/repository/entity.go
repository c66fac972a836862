package repository

import (
	"errors"
	"time"

	"github.com/milkroute/delivery-gateway/pkg/docstore"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrDeliveryNotFound = errors.New("delivery not found")
	// ErrConflict is returned when a uniqueness guard rejects an insert.
	ErrConflict = errors.New("record already exists")
)

const timestampLayout = time.RFC3339Nano

// Document field accessors. Stored values have been through a JSON round
// trip, so anything non-string is a float64.

func docString(doc docstore.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

func docFloat(doc docstore.Document, key string) float64 {
	switch n := doc[key].(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func docTime(doc docstore.Document, key string) time.Time {
	s, ok := doc[key].(string)
	if !ok || s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
