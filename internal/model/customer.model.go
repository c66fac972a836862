package model

import (
	"errors"
	"time"
)

// CustomerID is the opaque identifier of a customer.
type CustomerID string

type Customer struct {
	ID        CustomerID `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Mobile    string     `json:"mobile"`
	CreatedAt time.Time  `json:"created_at"`
}

// CustomerUpsertRequest carries the full replacement field set used by both
// create and update. Mobile is a secondary lookup key, not guaranteed unique.
type CustomerUpsertRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Mobile  string `json:"mobile"`
}

func (p CustomerUpsertRequest) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.Mobile == "" {
		return errors.New("mobile is required")
	}
	return nil
}
