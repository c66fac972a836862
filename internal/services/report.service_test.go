package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/pkg/redis"
)

func TestReportService_Summary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	customer := env.addCustomer(t, "Sharma Household", "9876543210")
	day := model.NewDate(2026, time.March, 5)

	env.addDelivery(t, customer.ID, env.agent.ID, day, 5, model.DeliveryDelivered)
	env.addDelivery(t, customer.ID, env.agent.ID, day, 3, model.DeliveryPending)
	env.addDelivery(t, customer.ID, env.agent.ID, day, 2, model.DeliveryIssue)

	t.Run("whole ledger", func(t *testing.T) {
		stats, err := env.reports.Summary(ctx, env.admin, nil)
		require.NoError(t, err)
		assert.Equal(t, model.DeliveryStats{
			TotalDeliveries: 3,
			DeliveredCount:  1,
			PendingCount:    1,
			IssueCount:      1,
			TotalQuantity:   10,
		}, stats)
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		stats, err := env.reports.Summary(ctx, env.admin, &model.DateRange{Start: day, End: day})
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalDeliveries)

		stats, err = env.reports.Summary(ctx, env.admin, &model.DateRange{Start: day.AddDays(1), End: day.AddDays(2)})
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.TotalDeliveries)
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		_, err := env.reports.Summary(ctx, env.admin, &model.DateRange{Start: day, End: day.AddDays(-1)})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		_, err := env.reports.Summary(ctx, env.agent, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestReportService_SummaryCache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	customer := env.addCustomer(t, "Sharma Household", "9876543210")
	day := model.Today()
	env.addDelivery(t, customer.ID, env.agent.ID, day, 5, model.DeliveryDelivered)

	mr := miniredis.RunT(t)
	kv, err := redis.NewRedisAdapter("report-cache-test", "test:", &redis.Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)
	env.reports.cache = NewSummaryCache(kv)

	first, err := env.reports.Summary(ctx, env.admin, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TotalDeliveries)

	// Within the TTL the memoized statistics are served even though the
	// ledger has grown.
	env.addDelivery(t, customer.ID, env.agent.ID, day, 3, model.DeliveryPending)
	cached, err := env.reports.Summary(ctx, env.admin, nil)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	mr.FastForward(time.Minute)
	fresh, err := env.reports.Summary(ctx, env.admin, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.TotalDeliveries)
}

func TestSummaryCache_FirstWriterWins(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := redis.NewRedisAdapter("summary-cache-test", "test:", &redis.Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)
	cache := NewSummaryCache(kv)

	first := model.DeliveryStats{TotalDeliveries: 1, DeliveredCount: 1, TotalQuantity: 5}
	cache.Set("k", first)

	// A concurrent recomputation landing second must not replace the live
	// entry or slide its expiry forward.
	cache.Set("k", model.DeliveryStats{TotalDeliveries: 9})

	got, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, first, got)

	mr.FastForward(time.Minute)
	_, ok = cache.Get("k")
	assert.False(t, ok)
}

func TestReportService_CustomerReport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	customer := env.addCustomer(t, "Sharma Household", "9876543210")
	day := model.NewDate(2026, time.March, 5)

	env.addDelivery(t, customer.ID, env.agent.ID, day, 5, model.DeliveryDelivered)
	env.addDelivery(t, customer.ID, env.agent.ID, day.AddDays(2), 3, model.DeliveryPending)

	report, err := env.reports.CustomerReport(ctx, env.admin, customer.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, report.Customer)
	require.Len(t, report.Deliveries, 2)
	assert.Equal(t, day.AddDays(2), report.Deliveries[0].Date)

	t.Run("range narrows history", func(t *testing.T) {
		report, err := env.reports.CustomerReport(ctx, env.admin, customer.ID, &model.DateRange{Start: day, End: day})
		require.NoError(t, err)
		require.Len(t, report.Deliveries, 1)
		assert.Equal(t, day, report.Deliveries[0].Date)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := env.reports.CustomerReport(ctx, env.admin, "ghost", nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReportService_AgentReport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	customer := env.addCustomer(t, "Sharma Household", "9876543210")
	day := model.Today()

	env.addDelivery(t, customer.ID, env.agent.ID, day, 5, model.DeliveryDelivered)
	env.addDelivery(t, customer.ID, "other-agent", day, 9, model.DeliveryPending)

	report, err := env.reports.AgentReport(ctx, env.admin, env.agent.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, env.agent.ID, report.Agent.ID)
	assert.Equal(t, int64(1), report.Statistics.TotalDeliveries)
	assert.Equal(t, 5.0, report.Statistics.TotalQuantity)

	t.Run("unknown agent", func(t *testing.T) {
		_, err := env.reports.AgentReport(ctx, env.admin, "ghost", nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("admin id is not an agent", func(t *testing.T) {
		_, err := env.reports.AgentReport(ctx, env.admin, env.admin.ID, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReportService_DailyReport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	customer := env.addCustomer(t, "Sharma Household", "9876543210")
	day := model.NewDate(2026, time.March, 5)

	second, err := env.auth.Register(ctx, env.admin, model.UserCreateRequest{
		Username: "meena", Password: "secret", Role: model.RoleDeliveryAgent, Name: "Meena Patel",
	})
	require.NoError(t, err)

	env.addDelivery(t, customer.ID, env.agent.ID, day, 5, model.DeliveryDelivered)
	env.addDelivery(t, customer.ID, env.agent.ID, day, 3, model.DeliveryPending)
	env.addDelivery(t, customer.ID, second.ID, day, 2, model.DeliveryIssue)
	env.addDelivery(t, customer.ID, second.ID, day.AddDays(1), 7, model.DeliveryDelivered)

	report, err := env.reports.DailyReport(ctx, env.admin, day)
	require.NoError(t, err)
	assert.Equal(t, day, report.Date)
	assert.Equal(t, int64(3), report.Overall.TotalDeliveries)
	require.Len(t, report.Agents, 2)

	// Per-agent counters add up to the day's overall figures when every
	// agent resolves.
	var sum model.DeliveryStats
	for _, group := range report.Agents {
		sum.TotalDeliveries += group.Statistics.TotalDeliveries
		sum.DeliveredCount += group.Statistics.DeliveredCount
		sum.PendingCount += group.Statistics.PendingCount
		sum.IssueCount += group.Statistics.IssueCount
		sum.TotalQuantity += group.Statistics.TotalQuantity
	}
	assert.Equal(t, report.Overall, sum)
}

func TestReportService_DailyReportDropsUnresolvedAgents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	customer := env.addCustomer(t, "Sharma Household", "9876543210")
	day := model.Today()

	env.addDelivery(t, customer.ID, env.agent.ID, day, 5, model.DeliveryDelivered)
	env.addDelivery(t, customer.ID, "ghost-agent", day, 9, model.DeliveryPending)

	report, err := env.reports.DailyReport(ctx, env.admin, day)
	require.NoError(t, err)

	// The ghost's entries stay in the overall figures but its group is gone,
	// so the breakdown undercounts the day.
	assert.Equal(t, int64(2), report.Overall.TotalDeliveries)
	require.Len(t, report.Agents, 1)
	assert.Equal(t, env.agent.ID, report.Agents[0].Agent.ID)
}
