package docstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupGormStore(t *testing.T) *GormStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&documentRow{})
	require.NoError(t, err)

	return NewGormStore(db)
}

func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("insert assigns id and find one round trips", func(t *testing.T) {
		s := newStore(t)

		id, err := s.InsertOne(ctx, "customers", Document{"name": "Asha", "mobile": "555-0101"})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		doc, err := s.FindOne(ctx, "customers", Filter{IDField: id})
		require.NoError(t, err)
		assert.Equal(t, "Asha", doc["name"])
		assert.Equal(t, "555-0101", doc["mobile"])
	})

	t.Run("find one misses with ErrNoDocument", func(t *testing.T) {
		s := newStore(t)

		_, err := s.FindOne(ctx, "customers", Filter{IDField: "nope"})
		assert.ErrorIs(t, err, ErrNoDocument)
	})

	t.Run("find many filters and sorts descending", func(t *testing.T) {
		s := newStore(t)

		for _, d := range []Document{
			{"agent": "a1", "delivery_date": "2025-03-01"},
			{"agent": "a1", "delivery_date": "2025-03-03"},
			{"agent": "a2", "delivery_date": "2025-03-02"},
		} {
			_, err := s.InsertOne(ctx, "deliveries", d)
			require.NoError(t, err)
		}

		docs, err := s.FindMany(ctx, "deliveries", Filter{"agent": "a1"}, &FindOptions{SortField: "delivery_date", SortDesc: true})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "2025-03-03", docs[0]["delivery_date"])
		assert.Equal(t, "2025-03-01", docs[1]["delivery_date"])
	})

	t.Run("range filter is inclusive on both ends", func(t *testing.T) {
		s := newStore(t)

		for _, date := range []string{"2025-02-28", "2025-03-01", "2025-03-05", "2025-03-06"} {
			_, err := s.InsertOne(ctx, "deliveries", Document{"delivery_date": date})
			require.NoError(t, err)
		}

		docs, err := s.FindMany(ctx, "deliveries", Filter{
			"delivery_date": Range{GTE: "2025-03-01", LTE: "2025-03-05"},
		}, nil)
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("update one applies the set and reports matches", func(t *testing.T) {
		s := newStore(t)

		id, err := s.InsertOne(ctx, "deliveries", Document{"status": "Pending", "notes": ""})
		require.NoError(t, err)

		matched, err := s.UpdateOne(ctx, "deliveries", Filter{IDField: id}, Document{"status": "Delivered", "notes": "left at door"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), matched)

		doc, err := s.FindOne(ctx, "deliveries", Filter{IDField: id})
		require.NoError(t, err)
		assert.Equal(t, "Delivered", doc["status"])
		assert.Equal(t, "left at door", doc["notes"])

		matched, err = s.UpdateOne(ctx, "deliveries", Filter{IDField: "missing"}, Document{"status": "Issue"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), matched)
	})

	t.Run("delete one", func(t *testing.T) {
		s := newStore(t)

		id, err := s.InsertOne(ctx, "customers", Document{"name": "Gone"})
		require.NoError(t, err)

		deleted, err := s.DeleteOne(ctx, "customers", Filter{IDField: id})
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		deleted, err = s.DeleteOne(ctx, "customers", Filter{IDField: id})
		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)
	})

	t.Run("insert unique rejects duplicates", func(t *testing.T) {
		s := newStore(t)

		_, err := s.InsertUnique(ctx, "users", Document{"username": "admin", "role": "admin"}, "username")
		require.NoError(t, err)

		_, err = s.InsertUnique(ctx, "users", Document{"username": "admin", "role": "viewer"}, "username")
		assert.ErrorIs(t, err, ErrConflict)

		_, err = s.InsertUnique(ctx, "users", Document{"username": "carrier", "role": "delivery_agent"}, "username")
		assert.NoError(t, err)
	})

	t.Run("whole set aggregation", func(t *testing.T) {
		s := newStore(t)

		seed := []Document{
			{"status": "Delivered", "quantity": 5.0, "delivery_date": "2025-03-01"},
			{"status": "Pending", "quantity": 3.0, "delivery_date": "2025-03-01"},
			{"status": "Issue", "quantity": 2.0, "delivery_date": "2025-03-02"},
		}
		for _, d := range seed {
			_, err := s.InsertOne(ctx, "deliveries", d)
			require.NoError(t, err)
		}

		results, err := s.Aggregate(ctx, "deliveries", Aggregation{
			Fields: []AggregateField{
				{Name: "total", Op: OpCount},
				{Name: "delivered", Op: OpCountIf, Field: "status", Equals: "Delivered"},
				{Name: "quantity", Op: OpSum, Field: "quantity"},
			},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Nil(t, results[0].Key)
		assert.Equal(t, float64(3), results[0].Values["total"])
		assert.Equal(t, float64(1), results[0].Values["delivered"])
		assert.Equal(t, float64(10), results[0].Values["quantity"])
	})

	t.Run("whole set aggregation over empty match is zero valued", func(t *testing.T) {
		s := newStore(t)

		results, err := s.Aggregate(ctx, "deliveries", Aggregation{
			Match:  Filter{"delivery_date": "2030-01-01"},
			Fields: []AggregateField{{Name: "total", Op: OpCount}},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, float64(0), results[0].Values["total"])
	})

	t.Run("grouped aggregation", func(t *testing.T) {
		s := newStore(t)

		seed := []Document{
			{"agent": "a1", "status": "Delivered", "quantity": 4.0},
			{"agent": "a1", "status": "Pending", "quantity": 1.0},
			{"agent": "a2", "status": "Delivered", "quantity": 2.0},
		}
		for _, d := range seed {
			_, err := s.InsertOne(ctx, "deliveries", d)
			require.NoError(t, err)
		}

		results, err := s.Aggregate(ctx, "deliveries", Aggregation{
			GroupBy: "agent",
			Fields: []AggregateField{
				{Name: "total", Op: OpCount},
				{Name: "quantity", Op: OpSum, Field: "quantity"},
			},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)

		byKey := map[any]map[string]float64{}
		for _, r := range results {
			byKey[r.Key] = r.Values
		}
		assert.Equal(t, float64(2), byKey["a1"]["total"])
		assert.Equal(t, float64(5), byKey["a1"]["quantity"])
		assert.Equal(t, float64(1), byKey["a2"]["total"])
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestGormStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store { return setupGormStore(t) })
}

// A unique-index violation raised by the database itself must come back as
// ErrConflict so callers map it to a conflict response. This is the path
// taken when another process wins an insert race that the in-process
// InsertUnique serialization cannot observe.
func TestGormStore_IndexViolationIsConflict(t *testing.T) {
	s := setupGormStore(t)
	ctx := context.Background()

	_, err := s.InsertOne(ctx, "users", Document{IDField: "u-1", "username": "admin"})
	require.NoError(t, err)

	_, err = s.InsertOne(ctx, "users", Document{IDField: "u-1", "username": "admin2"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_ConcurrentInsertUnique(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	concurrency := 16
	var wg sync.WaitGroup
	successes := make(chan string, concurrency)
	conflicts := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.InsertUnique(ctx, "users", Document{"username": "admin", "role": "admin"}, "role")
			if err != nil {
				conflicts <- err
				return
			}
			successes <- id
		}()
	}

	wg.Wait()
	close(successes)
	close(conflicts)

	assert.Len(t, successes, 1)
	assert.Len(t, conflicts, concurrency-1)
	for err := range conflicts {
		assert.ErrorIs(t, err, ErrConflict)
	}

	docs, err := s.FindMany(ctx, "users", Filter{"role": "admin"}, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
