package model

import "time"

// DeliveryStats are the four counters plus the quantity sum computed by
// every report. A status outside the closed set is tallied into
// TotalDeliveries and TotalQuantity but none of the named counters.
type DeliveryStats struct {
	TotalDeliveries int64   `json:"total_deliveries"`
	DeliveredCount  int64   `json:"delivered_count"`
	PendingCount    int64   `json:"pending_count"`
	IssueCount      int64   `json:"issue_count"`
	TotalQuantity   float64 `json:"total_quantity"`
}

type CustomerReportEntry struct {
	Date      Date           `json:"date"`
	Status    DeliveryStatus `json:"status"`
	Quantity  float64        `json:"quantity"`
	Notes     string         `json:"notes"`
	Timestamp time.Time      `json:"timestamp"`
}

type CustomerReport struct {
	Customer   *Customer             `json:"customer"`
	Deliveries []CustomerReportEntry `json:"deliveries"`
}

type AgentReport struct {
	Agent      *User         `json:"delivery_agent"`
	Statistics DeliveryStats `json:"statistics"`
}

type AgentBreakdown struct {
	Agent      *User         `json:"delivery_agent"`
	Statistics DeliveryStats `json:"statistics"`
}

type DailyReport struct {
	Date    Date             `json:"date"`
	Overall DeliveryStats    `json:"overall_statistics"`
	Agents  []AgentBreakdown `json:"delivery_agents"`
}

// AgentStats pairs a raw agent identifier with its statistics before the
// identifier is resolved to a display record.
type AgentStats struct {
	AgentID    UserID
	Statistics DeliveryStats
}
