package cache

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func TestProperty_FIFOEvictionKeepsNewestWindow(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("size is bounded and survivors are exactly the newest capacity keys", prop.ForAll(
		func(capacity int, n int) bool {
			store := NewStore(capacity, zap.NewNop())
			payloads := make([]*TextPayload, n)
			for i := 0; i < n; i++ {
				payloads[i] = NewTextPayload(fmt.Sprintf("v%d", i))
				store.Put(fmt.Sprintf("key-%04d", i), payloads[i])
			}

			if store.Len() > capacity {
				return false
			}

			// 距今最近的 min(n, capacity) 条存活，更早的全部按插入顺序被逐出。
			start := n - capacity
			if start < 0 {
				start = 0
			}
			for i := 0; i < n; i++ {
				_, ok := store.Get(fmt.Sprintf("key-%04d", i))
				if i < start && ok {
					return false
				}
				if i >= start && !ok {
					return false
				}
			}

			// 被逐出的载荷全部已释放，存活载荷全部未释放。
			for i := 0; i < n; i++ {
				if i < start && !payloads[i].Released() {
					return false
				}
				if i >= start && payloads[i].Released() {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.IntRange(0, 32),
	))

	properties.Property("duplicate puts never grow the store past distinct key count", prop.ForAll(
		func(capacity int, keys []string) bool {
			store := NewStore(capacity, zap.NewNop())
			distinct := make(map[string]struct{})
			for _, k := range keys {
				store.Put(k, NewTextPayload(k))
				distinct[k] = struct{}{}
			}
			limit := len(distinct)
			if capacity < limit {
				limit = capacity
			}
			return store.Len() <= limit
		},
		gen.IntRange(1, 8),
		gen.SliceOf(gen.OneConstOf("a", "b", "c", "d", "e", "f")),
	))

	properties.TestingRun(t)
}
