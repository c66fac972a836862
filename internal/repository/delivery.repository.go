package repository

import (
	"context"
	"errors"
	"time"

	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/pkg/docstore"
)

// DeliverySummaryFilter narrows the document set a summary is computed over.
// Zero-valued fields are not part of the filter. Date and Range are mutually
// exclusive; Range bounds are inclusive on both ends.
type DeliverySummaryFilter struct {
	CustomerID model.CustomerID
	AgentID    model.UserID
	Date       *model.Date
	Range      *model.DateRange
}

func (f DeliverySummaryFilter) toFilter() docstore.Filter {
	filter := docstore.Filter{}
	if f.CustomerID != "" {
		filter["customer_id"] = string(f.CustomerID)
	}
	if f.AgentID != "" {
		filter["agent_id"] = string(f.AgentID)
	}
	if f.Date != nil {
		filter["delivery_date"] = f.Date.String()
	} else if f.Range != nil {
		filter["delivery_date"] = docstore.Range{
			GTE: f.Range.Start.String(),
			LTE: f.Range.End.String(),
		}
	}
	return filter
}

// DeliveryRepository owns the delivery ledger and its aggregations.
type DeliveryRepository struct {
	store docstore.Store
}

func NewDeliveryRepository(store docstore.Store) *DeliveryRepository {
	return &DeliveryRepository{store: store}
}

func (r *DeliveryRepository) Create(ctx context.Context, d *model.Delivery) (*model.Delivery, error) {
	now := time.Now().UTC()
	if d.Timestamp.IsZero() {
		d.Timestamp = now
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	id, err := r.store.InsertOne(ctx, deliveryCollection, toDeliveryDoc(d))
	if err != nil {
		return nil, err
	}
	created := *d
	created.ID = model.DeliveryID(id)
	return &created, nil
}

func (r *DeliveryRepository) GetByID(ctx context.Context, id model.DeliveryID) (*model.Delivery, error) {
	doc, err := r.store.FindOne(ctx, deliveryCollection, docstore.Filter{docstore.IDField: string(id)})
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return nil, ErrDeliveryNotFound
		}
		return nil, err
	}
	return toDeliveryModel(doc), nil
}

// Update overwrites the mutable fields of a ledger entry and stamps the
// modification. The referenced customer, agent and date are left untouched.
// The reported bool is false when no entry carries the identifier.
func (r *DeliveryRepository) Update(ctx context.Context, id model.DeliveryID, req model.DeliveryUpdateRequest, updatedBy model.UserID) (bool, error) {
	set := docstore.Document{
		"quantity":        req.Quantity,
		"status":          string(req.Status),
		"notes":           req.Notes,
		"photo_proof_url": req.PhotoProofURL,
		"updated_by":      string(updatedBy),
		"timestamp":       encodeTime(time.Now().UTC()),
	}
	matched, err := r.store.UpdateOne(ctx, deliveryCollection, docstore.Filter{docstore.IDField: string(id)}, set)
	if err != nil {
		return false, err
	}
	return matched > 0, nil
}

// ListByDateAndAgent returns the ledger entries for one agent's day, the
// worklist a delivery round is driven from.
func (r *DeliveryRepository) ListByDateAndAgent(ctx context.Context, date model.Date, agent model.UserID) ([]*model.Delivery, error) {
	filter := docstore.Filter{"delivery_date": date.String()}
	if agent != "" {
		filter["agent_id"] = string(agent)
	}
	return r.list(ctx, filter, &docstore.FindOptions{SortField: "timestamp"})
}

func (r *DeliveryRepository) ListByCustomer(ctx context.Context, id model.CustomerID) ([]*model.Delivery, error) {
	filter := docstore.Filter{"customer_id": string(id)}
	return r.list(ctx, filter, &docstore.FindOptions{SortField: "delivery_date", SortDesc: true})
}

func (r *DeliveryRepository) ListAll(ctx context.Context) ([]*model.Delivery, error) {
	return r.list(ctx, nil, &docstore.FindOptions{SortField: "delivery_date", SortDesc: true})
}

func (r *DeliveryRepository) Delete(ctx context.Context, id model.DeliveryID) (bool, error) {
	deleted, err := r.store.DeleteOne(ctx, deliveryCollection, docstore.Filter{docstore.IDField: string(id)})
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// Summarize computes the status counters and quantity sum over the filtered
// ledger. An empty match still yields zero-valued statistics.
func (r *DeliveryRepository) Summarize(ctx context.Context, f DeliverySummaryFilter) (model.DeliveryStats, error) {
	results, err := r.store.Aggregate(ctx, deliveryCollection, docstore.Aggregation{
		Match:  f.toFilter(),
		Fields: statsFields(),
	})
	if err != nil {
		return model.DeliveryStats{}, err
	}
	if len(results) == 0 {
		return model.DeliveryStats{}, nil
	}
	return toDeliveryStats(results[0].Values), nil
}

// SummarizeByAgent groups one day's ledger by agent. Agents are keyed by
// their raw identifier; resolution to user records happens a layer up.
func (r *DeliveryRepository) SummarizeByAgent(ctx context.Context, date model.Date) ([]model.AgentStats, error) {
	results, err := r.store.Aggregate(ctx, deliveryCollection, docstore.Aggregation{
		Match:   docstore.Filter{"delivery_date": date.String()},
		GroupBy: "agent_id",
		Fields:  statsFields(),
	})
	if err != nil {
		return nil, err
	}
	stats := make([]model.AgentStats, 0, len(results))
	for _, res := range results {
		key, _ := res.Key.(string)
		stats = append(stats, model.AgentStats{
			AgentID:    model.UserID(key),
			Statistics: toDeliveryStats(res.Values),
		})
	}
	return stats, nil
}

func (r *DeliveryRepository) list(ctx context.Context, filter docstore.Filter, opts *docstore.FindOptions) ([]*model.Delivery, error) {
	docs, err := r.store.FindMany(ctx, deliveryCollection, filter, opts)
	if err != nil {
		return nil, err
	}
	deliveries := make([]*model.Delivery, len(docs))
	for i, doc := range docs {
		deliveries[i] = toDeliveryModel(doc)
	}
	return deliveries, nil
}
