package curvelock

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestWithLockSerializesSameCurve(t *testing.T) {
	r := NewRegistry()
	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.WithLock("curve-1", func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					cur := atomic.LoadInt32(&maxActive)
					if n <= cur || atomic.CompareAndSwapInt32(&maxActive, cur, n) {
						break
					}
				}
				atomic.AddInt32(&active, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxActive > 1 {
		t.Errorf("expected at most 1 concurrent holder of the same curve's lock, saw %d", maxActive)
	}
}

func TestWithLockAllowsDistinctCurvesInParallel(t *testing.T) {
	r := NewRegistry()
	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make(chan string, 2)

	for _, id := range []string{"curve-a", "curve-b"} {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_ = r.WithLock(id, func() error {
				results <- id
				return nil
			})
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for id := range results {
		seen[id] = true
	}
	if len(seen) != 2 {
		t.Errorf("expected both curves to run, saw %v", seen)
	}
}
