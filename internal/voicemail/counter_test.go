package voicemail

import (
	"errors"
	"sync"
	"testing"
)

func TestCounter_IncDec(t *testing.T) {
	c := NewCounter()
	c.Inc()
	c.Inc()
	if got := c.Current(); got != 2 {
		t.Fatalf("current = %d, want 2", got)
	}
	if _, err := c.Dec(); err != nil {
		t.Fatalf("dec: %v", err)
	}
	if got := c.Current(); got != 1 {
		t.Fatalf("current = %d, want 1", got)
	}
}

func TestCounter_RefusesNegative(t *testing.T) {
	c := NewCounter()
	if _, err := c.Dec(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
	if got := c.Current(); got != 0 {
		t.Fatalf("failed dec must not change value, got %d", got)
	}
}

func TestCounter_ConcurrentBalancedOps(t *testing.T) {
	c := NewCounter()
	const n = 200
	c.Set(n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
		go func() {
			defer wg.Done()
			if _, err := c.Dec(); err != nil {
				t.Errorf("dec: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := c.Current(); got != n {
		t.Fatalf("current = %d, want %d", got, n)
	}
}
