package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c, err := NewCache(client)
	require.NoError(t, err)
	return c, mr
}

func TestNewCache_NilClient(t *testing.T) {
	_, err := NewCache(nil)
	assert.Error(t, err)
}

func TestCache_SetGetDelete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, c.Delete(ctx, "k"))
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got, "missing key reads as empty")

	require.NoError(t, c.Set(ctx, "ttl", "v", time.Second))
	mr.FastForward(2 * time.Second)
	got, err = c.Get(ctx, "ttl")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCache_DeleteAll(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "appointments_cache:all", "1", 0))
	require.NoError(t, c.Set(ctx, "appointments_cache:patient:p1", "2", 0))
	require.NoError(t, c.Set(ctx, "clinic_schedule_cache", "3", 0))

	require.NoError(t, c.DeleteAll(ctx, "appointments_cache*"))

	assert.False(t, mr.Exists("appointments_cache:all"))
	assert.False(t, mr.Exists("appointments_cache:patient:p1"))
	assert.True(t, mr.Exists("clinic_schedule_cache"))
}

func TestCache_DeleteBatch(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))

	require.NoError(t, c.DeleteBatch(ctx))
	require.NoError(t, c.DeleteBatch(ctx, "a", "b"))
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
}

func TestCache_JSON(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	type entry struct {
		ID   int    `json:"id"`
		Open string `json:"open"`
	}

	var got []entry
	hit, err := c.GetJSON(ctx, "schedule", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := []entry{{ID: 1, Open: "09:00"}, {ID: 2, Open: "10:00"}}
	require.NoError(t, c.SetJSON(ctx, "schedule", want, time.Minute))
	hit, err = c.GetJSON(ctx, "schedule", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)

	require.NoError(t, mr.Set("schedule", "{not json"))
	hit, err = c.GetJSON(ctx, "schedule", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists("schedule"), "undecodable entries are dropped")
}

func TestCache_DeleteAllManyKeys(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 3*scanBatch+7; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("appointment_cache:%d", i), "x"))
	}
	require.NoError(t, mr.Set("schedule_cache", "x"))

	require.NoError(t, c.DeleteAll(ctx, "appointment_cache:*"))
	assert.Equal(t, []string{"schedule_cache"}, mr.Keys())
}
