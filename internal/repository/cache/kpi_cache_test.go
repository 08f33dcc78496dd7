package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legnamegusta-ctrl/apporgania/internal/config"
	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

// testRedis connects to a local Redis, skipping the test when none is
// reachable.
func testRedis(t *testing.T) *Redis {
	t.Helper()

	r, err := NewRedis(config.RedisConfig{Addr: "localhost:6379", DB: 15}, nil)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestKPICache_RoundTrip(t *testing.T) {
	r := testRedis(t)
	kpiCache := NewKPICache(r)
	ctx := context.Background()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	data := models.KPIData{
		TotalArea:        120,
		TotalActivities:  15,
		ActivitiesTrend:  50,
		UpcomingTasks:    4,
		ActiveIrrigation: 80,
	}

	require.NoError(t, kpiCache.Set(ctx, "p-test", from, to, data, time.Minute))

	got, err := kpiCache.Get(ctx, "p-test", from, to)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, data, *got)
}

func TestKPICache_MissReturnsNil(t *testing.T) {
	r := testRedis(t)
	kpiCache := NewKPICache(r)

	got, err := kpiCache.Get(context.Background(), "p-missing", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_PutLookupRevoke(t *testing.T) {
	r := testRedis(t)
	store := NewSessionStore(r)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "token-1", "u1", time.Minute))

	userID, err := store.UserID(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	require.NoError(t, store.Revoke(ctx, "token-1"))

	userID, err = store.UserID(ctx, "token-1")
	require.NoError(t, err)
	assert.Empty(t, userID)
}

func TestSessionStore_AttemptCounting(t *testing.T) {
	r := testRedis(t)
	store := NewSessionStore(r)
	ctx := context.Background()

	email := "throttle-test@apporgania.com.br"
	require.NoError(t, store.ResetAttempts(ctx, email))

	count, err := store.CountAttempt(ctx, email, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = store.CountAttempt(ctx, email, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, store.ResetAttempts(ctx, email))
	count, err = store.CountAttempt(ctx, email, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
