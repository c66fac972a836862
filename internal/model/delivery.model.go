package model

import (
	"errors"
	"time"
)

// DeliveryID is the opaque identifier of a delivery event.
type DeliveryID string

// DeliveryStatus is the closed lifecycle set of a delivery event.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "Pending"
	DeliveryDelivered DeliveryStatus = "Delivered"
	DeliveryIssue     DeliveryStatus = "Issue"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryPending, DeliveryDelivered, DeliveryIssue:
		return true
	}
	return false
}

// Delivery is one ledger entry. CustomerID and AgentID are set at creation
// and never repointed; updates touch only status, quantity, notes, photo and
// the modification stamps. UpdatedBy stays nil until the first update.
type Delivery struct {
	ID            DeliveryID     `json:"id"`
	CustomerID    CustomerID     `json:"customer_id"`
	AgentID       UserID         `json:"agent_id"`
	DeliveryDate  Date           `json:"delivery_date"`
	Quantity      float64        `json:"quantity"`
	Status        DeliveryStatus `json:"status"`
	Notes         string         `json:"notes"`
	PhotoProofURL string         `json:"photo_proof_url"`
	Timestamp     time.Time      `json:"timestamp"`
	UpdatedBy     *UserID        `json:"updated_by"`
	CreatedAt     time.Time      `json:"created_at"`
}

// DeliveryView embeds the referenced customer and agent display records for
// detail/listing responses. Either pointer is null when the reference does
// not resolve; an unresolved reference never fails the read.
type DeliveryView struct {
	Delivery
	Customer *Customer `json:"customer"`
	Agent    *User     `json:"delivery_agent"`
}

type DeliveryCreateRequest struct {
	CustomerID    CustomerID     `json:"customer_id"`
	AgentID       UserID         `json:"agent_id"`
	DeliveryDate  Date           `json:"delivery_date"`
	Quantity      float64        `json:"quantity"`
	Status        DeliveryStatus `json:"status"`
	Notes         string         `json:"notes"`
	PhotoProofURL string         `json:"photo_proof_url"`
}

func (p DeliveryCreateRequest) Validate() error {
	if p.CustomerID == "" {
		return errors.New("customer_id is required")
	}
	if p.AgentID == "" {
		return errors.New("agent_id is required")
	}
	if p.DeliveryDate.IsZero() {
		return errors.New("delivery_date is required")
	}
	if p.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	if p.Status != "" && !p.Status.Valid() {
		return errors.New("status must be one of Pending, Delivered, Issue")
	}
	return nil
}

// DeliveryUpdateRequest carries the mutable field set. Date, customer and
// agent cannot be changed after creation.
type DeliveryUpdateRequest struct {
	Quantity      float64        `json:"quantity"`
	Status        DeliveryStatus `json:"status"`
	Notes         string         `json:"notes"`
	PhotoProofURL string         `json:"photo_proof_url"`
}

func (p DeliveryUpdateRequest) Validate() error {
	if p.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	if !p.Status.Valid() {
		return errors.New("status must be one of Pending, Delivered, Issue")
	}
	return nil
}
