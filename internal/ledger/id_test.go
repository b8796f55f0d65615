package ledger

import (
	"sync"
	"testing"
)

func less(a, b Uint128) bool {
	if a.Hi != b.Hi {
		return a.Hi < b.Hi
	}
	return a.Lo < b.Lo
}

func TestNextIDMonotonic(t *testing.T) {
	prev := NextID()
	for i := 0; i < 10_000; i++ {
		id := NextID()
		if !less(prev, id) {
			t.Fatalf("identifier regressed: %s then %s", prev, id)
		}
		prev = id
	}
}

func TestNextIDUniqueUnderConcurrency(t *testing.T) {
	const workers = 8
	const perWorker = 2_000

	var mu sync.Mutex
	seen := make(map[Uint128]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]Uint128, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, NextID())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate identifier %s", id)
				}
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()
}

func TestUint128DecimalRoundTrip(t *testing.T) {
	cases := []Uint128{
		{},
		U128(1),
		U128(^uint64(0)),
		{Hi: 1, Lo: 0},
		{Hi: ^uint64(0), Lo: ^uint64(0)},
		NextID(),
	}
	for _, u := range cases {
		parsed, err := ParseUint128(u.String())
		if err != nil {
			t.Fatalf("parse %s: %v", u, err)
		}
		if parsed != u {
			t.Fatalf("round trip mismatch: %v != %v", parsed, u)
		}
	}
}

func TestParseUint128Rejects(t *testing.T) {
	for _, s := range []string{"", "-1", "abc", "340282366920938463463374607431768211456"} {
		if _, err := ParseUint128(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}
