// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLazy_RunsOnce(t *testing.T) {
	var calls atomic.Int32
	l := newLazy(func() (int, error) {
		calls.Add(1)
		return 42, nil
	})

	if l.initialized() {
		t.Fatal("initialized before first get")
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := l.get(); err != nil || v != 42 {
				t.Errorf("get() = %d, %v", v, err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("init ran %d times, want 1", calls.Load())
	}
	if !l.initialized() {
		t.Error("initialized() = false after successful get")
	}
}

func TestLazy_MemoizesError(t *testing.T) {
	wantErr := errors.New("bad key")
	var calls int
	l := newLazy(func() (string, error) {
		calls++
		return "", wantErr
	})

	for i := 0; i < 3; i++ {
		if _, err := l.get(); !errors.Is(err, wantErr) {
			t.Fatalf("get() error = %v, want %v", err, wantErr)
		}
	}
	if calls != 1 {
		t.Errorf("init ran %d times, want 1", calls)
	}
	if l.initialized() {
		t.Error("initialized() = true after failed init")
	}
}
