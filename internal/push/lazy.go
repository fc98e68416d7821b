// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"sync"
	"sync/atomic"
)

// lazy initializes a provider client on first use. The outcome, including
// an error, is memoized: a broken credential fails every send the same way.
type lazy[T any] struct {
	once sync.Once
	init func() (T, error)
	val  T
	err  error
	done atomic.Bool
}

func newLazy[T any](init func() (T, error)) *lazy[T] {
	return &lazy[T]{init: init}
}

// get returns the initialized value, running init at most once.
func (l *lazy[T]) get() (T, error) {
	l.once.Do(func() {
		l.val, l.err = l.init()
		l.done.Store(true)
	})
	return l.val, l.err
}

// initialized reports whether init ran and succeeded.
func (l *lazy[T]) initialized() bool {
	return l.done.Load() && l.err == nil
}
