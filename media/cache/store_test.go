package cache

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testPayload 记录 Release 调用次数的测试载荷。
type testPayload struct {
	size     int
	releases atomic.Int32
	released atomic.Bool
}

func newTestPayload(size int) *testPayload {
	return &testPayload{size: size}
}

func (p *testPayload) Release() {
	if p.released.CompareAndSwap(false, true) {
		p.releases.Add(1)
	}
}

func (p *testPayload) Released() bool { return p.released.Load() }
func (p *testPayload) Size() int      { return p.size }

func TestStore_GetMissThenHit(t *testing.T) {
	store := NewStore(4, zap.NewNop())

	_, ok := store.Get("k1")
	assert.False(t, ok)

	store.Put("k1", NewTextPayload("hello"))
	got, ok := store.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "hello", got.(*TextPayload).Text())

	stats := store.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestStore_StrictFIFOEviction(t *testing.T) {
	store := NewStore(3, zap.NewNop())

	payloads := make([]*testPayload, 4)
	for i := 0; i < 4; i++ {
		payloads[i] = newTestPayload(i)
		store.Put(fmt.Sprintf("k%d", i), payloads[i])
	}

	// 容量 3 插入 4 条：恰好逐出最早插入的 k0，其余保留。
	_, ok := store.Get("k0")
	assert.False(t, ok)
	for i := 1; i < 4; i++ {
		_, ok := store.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok, "k%d should survive", i)
	}

	assert.True(t, payloads[0].Released(), "evicted payload must be released")
	assert.Equal(t, int32(1), payloads[0].releases.Load())
	for i := 1; i < 4; i++ {
		assert.False(t, payloads[i].Released())
	}
	assert.Equal(t, uint64(1), store.Stats().Evictions)
}

func TestStore_HitDoesNotChangeEvictionOrder(t *testing.T) {
	store := NewStore(2, zap.NewNop())
	store.Put("a", NewTextPayload("1"))
	store.Put("b", NewTextPayload("2"))

	// 命中 a 之后插入 c：被逐出的仍是最旧的 a，而不是 b。
	_, ok := store.Get("a")
	require.True(t, ok)
	store.Put("c", NewTextPayload("3"))

	_, ok = store.Get("a")
	assert.False(t, ok)
	_, ok = store.Get("b")
	assert.True(t, ok)
	_, ok = store.Get("c")
	assert.True(t, ok)
}

func TestStore_ReleasedEntryTreatedAsAbsent(t *testing.T) {
	store := NewStore(4, zap.NewNop())
	p := newTestPayload(8)
	store.Put("k", p)

	p.Release()

	_, ok := store.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len(), "stale entry must be removed")
}

func TestStore_DuplicateKeyKeepsFirstPayload(t *testing.T) {
	store := NewStore(4, zap.NewNop())
	first := NewTextPayload("first")
	second := newTestPayload(1)

	store.Put("k", first)
	store.Put("k", second)

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "first", got.(*TextPayload).Text())
	assert.True(t, second.Released(), "rejected payload must not leak")
	assert.Equal(t, 1, store.Len())
}

func TestStore_PutIgnoresReleasedPayload(t *testing.T) {
	store := NewStore(4, zap.NewNop())
	p := newTestPayload(1)
	p.Release()

	store.Put("k", p)
	assert.Equal(t, 0, store.Len())
}

func TestStore_ClearReleasesEverything(t *testing.T) {
	store := NewStore(4, zap.NewNop())
	payloads := make([]*testPayload, 3)
	for i := range payloads {
		payloads[i] = newTestPayload(i)
		store.Put(fmt.Sprintf("k%d", i), payloads[i])
	}

	store.Clear()

	assert.Equal(t, 0, store.Len())
	for i, p := range payloads {
		assert.True(t, p.Released(), "payload %d must be released on Clear", i)
	}
}

func TestNewStore_DefaultCapacity(t *testing.T) {
	store := NewStore(0, nil)
	assert.Equal(t, DefaultCapacity, store.Stats().Capacity)
}
