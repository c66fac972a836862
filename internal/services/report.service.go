package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/internal/repository"
	"github.com/milkroute/delivery-gateway/pkg/logger"
	"github.com/milkroute/delivery-gateway/pkg/prom"
)

// ErrInvalidRange is returned for a half-open or inverted date range. A
// range is either fully specified or absent.
var ErrInvalidRange = errors.New("date range requires both bounds in order")

// DeliveryAnalytics is the aggregation surface the report engine consumes.
type DeliveryAnalytics interface {
	Summarize(ctx context.Context, f repository.DeliverySummaryFilter) (model.DeliveryStats, error)
	SummarizeByAgent(ctx context.Context, date model.Date) ([]model.AgentStats, error)
	ListByCustomer(ctx context.Context, id model.CustomerID) ([]*model.Delivery, error)
}

// ReportService computes read-only aggregations over the ledger. Every
// report is admin-only; the role failure is uniform so the route set leaks
// nothing about which reports exist.
type ReportService struct {
	deliveries DeliveryAnalytics
	customers  CustomerRepository
	users      UserRepository
	auth       *AuthService
	cache      *SummaryCache
}

func NewReportService(deliveries DeliveryAnalytics, customers CustomerRepository, users UserRepository, auth *AuthService, cache *SummaryCache) *ReportService {
	return &ReportService{
		deliveries: deliveries,
		customers:  customers,
		users:      users,
		auth:       auth,
		cache:      cache,
	}
}

// Summary aggregates the whole ledger, optionally narrowed to an inclusive
// date range. Results are memoized briefly when a cache is configured.
func (s *ReportService) Summary(ctx context.Context, acting *model.User, rng *model.DateRange) (model.DeliveryStats, error) {
	if err := s.auth.RequireAdmin(acting); err != nil {
		return model.DeliveryStats{}, err
	}
	if rng != nil {
		if err := rng.Validate(); err != nil {
			return model.DeliveryStats{}, ErrInvalidRange
		}
	}
	defer s.observe("summary", time.Now())

	key := summaryKey(rng)
	if stats, ok := s.cache.Get(key); ok {
		return stats, nil
	}
	stats, err := s.deliveries.Summarize(ctx, repository.DeliverySummaryFilter{Range: rng})
	if err != nil {
		return model.DeliveryStats{}, err
	}
	s.cache.Set(key, stats)
	return stats, nil
}

// CustomerReport lists one customer's delivery history newest first, with
// the customer's display record attached.
func (s *ReportService) CustomerReport(ctx context.Context, acting *model.User, id model.CustomerID, rng *model.DateRange) (*model.CustomerReport, error) {
	if err := s.auth.RequireAdmin(acting); err != nil {
		return nil, err
	}
	if rng != nil {
		if err := rng.Validate(); err != nil {
			return nil, ErrInvalidRange
		}
	}
	defer s.observe("customer", time.Now())

	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	deliveries, err := s.deliveries.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	entries := make([]model.CustomerReportEntry, 0, len(deliveries))
	for _, d := range deliveries {
		if rng != nil && !withinRange(d.DeliveryDate, *rng) {
			continue
		}
		entries = append(entries, model.CustomerReportEntry{
			Date:      d.DeliveryDate,
			Status:    d.Status,
			Quantity:  d.Quantity,
			Notes:     d.Notes,
			Timestamp: d.Timestamp,
		})
	}
	return &model.CustomerReport{Customer: customer, Deliveries: entries}, nil
}

// AgentReport aggregates the ledger slice assigned to one delivery agent.
// The id must resolve to a user actually holding the delivery_agent role.
func (s *ReportService) AgentReport(ctx context.Context, acting *model.User, id model.UserID, rng *model.DateRange) (*model.AgentReport, error) {
	if err := s.auth.RequireAdmin(acting); err != nil {
		return nil, err
	}
	if rng != nil {
		if err := rng.Validate(); err != nil {
			return nil, ErrInvalidRange
		}
	}
	defer s.observe("agent", time.Now())

	agent, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if agent.Role != model.RoleDeliveryAgent {
		return nil, ErrNotFound
	}
	stats, err := s.deliveries.Summarize(ctx, repository.DeliverySummaryFilter{AgentID: id, Range: rng})
	if err != nil {
		return nil, err
	}
	return &model.AgentReport{Agent: agent, Statistics: stats}, nil
}

// DailyReport combines one day's overall statistics with a per-agent
// breakdown. Ledger entries whose agent id no longer resolves contribute to
// the overall figures but their group is dropped from the breakdown, so the
// per-agent totals may undercount the day.
func (s *ReportService) DailyReport(ctx context.Context, acting *model.User, date model.Date) (*model.DailyReport, error) {
	if err := s.auth.RequireAdmin(acting); err != nil {
		return nil, err
	}
	defer s.observe("daily", time.Now())

	overall, err := s.deliveries.Summarize(ctx, repository.DeliverySummaryFilter{Date: &date})
	if err != nil {
		return nil, err
	}
	grouped, err := s.deliveries.SummarizeByAgent(ctx, date)
	if err != nil {
		return nil, err
	}
	agents := make([]model.AgentBreakdown, 0, len(grouped))
	for _, group := range grouped {
		agent, err := s.users.GetByID(ctx, group.AgentID)
		if err != nil {
			logger.Debug("daily report dropped unresolved agent", "agent_id", group.AgentID, "date", date.String())
			continue
		}
		agents = append(agents, model.AgentBreakdown{Agent: agent, Statistics: group.Statistics})
	}
	return &model.DailyReport{Date: date, Overall: overall, Agents: agents}, nil
}

func (s *ReportService) observe(report string, started time.Time) {
	prom.ObserveReportDuration(report, time.Since(started).Seconds())
}

func summaryKey(rng *model.DateRange) string {
	if rng == nil {
		return "report:summary:all"
	}
	return fmt.Sprintf("report:summary:%s:%s", rng.Start.String(), rng.End.String())
}

func withinRange(d model.Date, rng model.DateRange) bool {
	return !d.Before(rng.Start) && !rng.End.Before(d)
}
