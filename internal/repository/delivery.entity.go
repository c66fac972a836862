package repository

import (
	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/pkg/docstore"
)

const deliveryCollection = "deliveries"

// Aggregation output field names shared by the summary operations.
const (
	statTotalDeliveries = "total_deliveries"
	statDeliveredCount  = "delivered_count"
	statPendingCount    = "pending_count"
	statIssueCount      = "issue_count"
	statTotalQuantity   = "total_quantity"
)

func toDeliveryDoc(d *model.Delivery) docstore.Document {
	doc := docstore.Document{
		"customer_id":     string(d.CustomerID),
		"agent_id":        string(d.AgentID),
		"delivery_date":   d.DeliveryDate.String(),
		"quantity":        d.Quantity,
		"status":          string(d.Status),
		"notes":           d.Notes,
		"photo_proof_url": d.PhotoProofURL,
		"timestamp":       encodeTime(d.Timestamp),
		"created_at":      encodeTime(d.CreatedAt),
	}
	if d.ID != "" {
		doc[docstore.IDField] = string(d.ID)
	}
	if d.UpdatedBy != nil {
		doc["updated_by"] = string(*d.UpdatedBy)
	}
	return doc
}

func toDeliveryModel(doc docstore.Document) *model.Delivery {
	if doc == nil {
		return nil
	}
	date, _ := model.ParseDate(docString(doc, "delivery_date"))
	d := &model.Delivery{
		ID:            model.DeliveryID(docString(doc, docstore.IDField)),
		CustomerID:    model.CustomerID(docString(doc, "customer_id")),
		AgentID:       model.UserID(docString(doc, "agent_id")),
		DeliveryDate:  date,
		Quantity:      docFloat(doc, "quantity"),
		Status:        model.DeliveryStatus(docString(doc, "status")),
		Notes:         docString(doc, "notes"),
		PhotoProofURL: docString(doc, "photo_proof_url"),
		Timestamp:     docTime(doc, "timestamp"),
		CreatedAt:     docTime(doc, "created_at"),
	}
	if s, ok := doc["updated_by"].(string); ok && s != "" {
		id := model.UserID(s)
		d.UpdatedBy = &id
	}
	return d
}

func statsFields() []docstore.AggregateField {
	return []docstore.AggregateField{
		{Name: statTotalDeliveries, Op: docstore.OpCount},
		{Name: statDeliveredCount, Op: docstore.OpCountIf, Field: "status", Equals: string(model.DeliveryDelivered)},
		{Name: statPendingCount, Op: docstore.OpCountIf, Field: "status", Equals: string(model.DeliveryPending)},
		{Name: statIssueCount, Op: docstore.OpCountIf, Field: "status", Equals: string(model.DeliveryIssue)},
		{Name: statTotalQuantity, Op: docstore.OpSum, Field: "quantity"},
	}
}

func toDeliveryStats(values map[string]float64) model.DeliveryStats {
	return model.DeliveryStats{
		TotalDeliveries: int64(values[statTotalDeliveries]),
		DeliveredCount:  int64(values[statDeliveredCount]),
		PendingCount:    int64(values[statPendingCount]),
		IssueCount:      int64(values[statIssueCount]),
		TotalQuantity:   values[statTotalQuantity],
	}
}
