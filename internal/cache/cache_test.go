package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

func fp(s string) axiom.Fingerprint {
	return axiom.ComputeFingerprint(s, "impl", "z3", axiom.Standard)
}

func verified() *axiom.VerificationResult {
	return &axiom.VerificationResult{Status: axiom.StatusVerified, Backend: "z3"}
}

func TestCache_GetPut(t *testing.T) {
	c := New(8, time.Minute)

	if _, ok := c.Get(fp("a")); ok {
		t.Error("expected a miss on an empty cache")
	}

	c.Put(fp("a"), verified())
	got, ok := c.Get(fp("a"))
	if !ok || got.Status != axiom.StatusVerified {
		t.Error("expected a hit after Put")
	}
}

func TestCache_EntriesAreImmutable(t *testing.T) {
	c := New(8, time.Minute)

	first := verified()
	c.Put(fp("a"), first)
	c.Put(fp("a"), &axiom.VerificationResult{Status: axiom.StatusFalsified})

	got, _ := c.Get(fp("a"))
	if got != first {
		t.Error("a committed entry was overwritten")
	}
}

func TestCache_LRUBound(t *testing.T) {
	c := New(4, time.Minute)
	for i := 0; i < 10; i++ {
		c.Put(fp(fmt.Sprintf("spec-%d", i)), verified())
	}
	if c.Len() > 4 {
		t.Errorf("cache exceeded its bound: %d entries", c.Len())
	}
	// The newest entries survive.
	if _, ok := c.Get(fp("spec-9")); !ok {
		t.Error("most recent entry was evicted")
	}
	if _, ok := c.Get(fp("spec-0")); ok {
		t.Error("oldest entry should have been evicted")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(8, 20*time.Millisecond)
	c.Put(fp("a"), verified())

	if _, ok := c.Get(fp("a")); !ok {
		t.Fatal("expected a hit before expiry")
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get(fp("a")); ok {
		t.Error("expected the entry to expire")
	}
}

func TestGetOrCompute_CachesResult(t *testing.T) {
	c := New(8, time.Minute)
	var calls atomic.Int32

	compute := func(context.Context) (*axiom.VerificationResult, error) {
		calls.Add(1)
		return verified(), nil
	}

	for i := 0; i < 3; i++ {
		if _, err := c.GetOrCompute(context.Background(), fp("a"), compute, nil); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected one computation, got %d", calls.Load())
	}
}

func TestGetOrCompute_SingleFlight(t *testing.T) {
	c := New(8, time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	compute := func(context.Context) (*axiom.VerificationResult, error) {
		calls.Add(1)
		<-release
		return verified(), nil
	}

	const n = 16
	var wg sync.WaitGroup
	results := make([]*axiom.VerificationResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := c.GetOrCompute(context.Background(), fp("shared"), compute, nil)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			results[i] = r
		}(i)
	}

	// Let every caller join the flight before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected one backend invocation for %d concurrent callers, got %d", n, calls.Load())
	}
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatal("callers received different results")
		}
	}
}

func TestGetOrCompute_UncacheableNotPinned(t *testing.T) {
	c := New(8, time.Minute)
	var calls atomic.Int32

	compute := func(context.Context) (*axiom.VerificationResult, error) {
		calls.Add(1)
		return &axiom.VerificationResult{Status: axiom.StatusInconclusive}, nil
	}
	never := func(*axiom.VerificationResult) bool { return false }

	for i := 0; i < 2; i++ {
		if _, err := c.GetOrCompute(context.Background(), fp("a"), compute, never); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("uncacheable result was pinned: %d calls", calls.Load())
	}
	if c.Len() != 0 {
		t.Errorf("uncacheable result stored: %d entries", c.Len())
	}
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	c := New(8, time.Minute)
	var calls atomic.Int32

	failing := func(context.Context) (*axiom.VerificationResult, error) {
		calls.Add(1)
		return nil, errors.New("tool crashed")
	}

	if _, err := c.GetOrCompute(context.Background(), fp("a"), failing, nil); err == nil {
		t.Fatal("expected the computation error to surface")
	}
	// A later attempt must recompute, not replay the failure.
	if _, err := c.GetOrCompute(context.Background(), fp("a"), func(context.Context) (*axiom.VerificationResult, error) {
		calls.Add(1)
		return verified(), nil
	}, nil); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 computations, got %d", calls.Load())
	}
}

func TestGetOrCompute_CallerCancellation(t *testing.T) {
	c := New(8, time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})

	slow := func(context.Context) (*axiom.VerificationResult, error) {
		close(started)
		<-release
		return verified(), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(ctx, fp("slow"), slow, nil)
		errCh <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return promptly")
	}
	close(release)
}

func TestGetOrCompute_FlightSurvivesInitiatorCancel(t *testing.T) {
	c := New(8, time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})

	slow := func(ctx context.Context) (*axiom.VerificationResult, error) {
		close(started)
		select {
		case <-release:
			return verified(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	initCtx, cancel := context.WithCancel(context.Background())
	initErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(initCtx, fp("shared"), slow, nil)
		initErr <- err
	}()
	<-started

	type outcome struct {
		result *axiom.VerificationResult
		err    error
	}
	waiterCh := make(chan outcome, 1)
	go func() {
		r, err := c.GetOrCompute(context.Background(), fp("shared"), slow, nil)
		waiterCh <- outcome{r, err}
	}()
	// Let the waiter join the flight before the initiator goes away.
	time.Sleep(20 * time.Millisecond)

	// Cancelling the caller that started the flight must fail only that
	// caller, never the computation itself.
	cancel()
	if err := <-initErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("initiator: expected context.Canceled, got %v", err)
	}

	close(release)
	select {
	case out := <-waiterCh:
		if out.err != nil {
			t.Fatalf("waiter: expected the shared result, got error %v", out.err)
		}
		if out.result == nil || out.result.Status != axiom.StatusVerified {
			t.Fatalf("waiter: unexpected result %+v", out.result)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never received the flight's result")
	}

	if got, ok := c.Get(fp("shared")); !ok || got.Status != axiom.StatusVerified {
		t.Error("completed flight did not publish its result")
	}
}
