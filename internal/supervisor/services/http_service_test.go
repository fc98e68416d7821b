// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/pushward/internal/config"
)

// stubServer returns serveErr from Serve, or blocks until Shutdown when
// serveErr is nil.
type stubServer struct {
	serveErr    error
	shutdownErr error

	shutdowns atomic.Int32
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func newStubServer() *stubServer {
	return &stubServer{stopCh: make(chan struct{})}
}

func (s *stubServer) Serve(ln net.Listener) error {
	defer ln.Close()
	if s.serveErr != nil {
		return s.serveErr
	}
	<-s.stopCh
	return http.ErrServerClosed
}

func (s *stubServer) Shutdown(context.Context) error {
	s.shutdowns.Add(1)
	s.stopOnce.Do(func() { close(s.stopCh) })
	return s.shutdownErr
}

func waitBound(t *testing.T, svc *HTTPServerService) *net.TCPAddr {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if addr := svc.BoundAddr(); addr != nil {
			return addr
		}
		if time.Now().After(deadline) {
			t.Fatal("service did not bind")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func serveAsync(svc *HTTPServerService) (context.CancelFunc, <-chan error) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	return cancel, errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}

var _ suture.Service = (*HTTPServerService)(nil)

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, -5 * time.Second} {
		svc := NewHTTPServerService("127.0.0.1:0", newStubServer(), timeout)
		if svc.shutdownTimeout != defaultShutdownTimeout {
			t.Errorf("timeout %v: got %v, want %v", timeout, svc.shutdownTimeout, defaultShutdownTimeout)
		}
	}
	if got := NewHTTPServerService("127.0.0.1:0", newStubServer(), time.Second).String(); got != "ops-http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestNewOpsServer(t *testing.T) {
	srv := NewOpsServer(config.ServerConfig{Host: "127.0.0.1", Port: 8086, Timeout: 30 * time.Second}, http.NotFoundHandler())

	if srv.Addr != "127.0.0.1:8086" {
		t.Errorf("Addr = %q", srv.Addr)
	}
	if srv.ReadTimeout != 30*time.Second || srv.WriteTimeout <= srv.ReadTimeout {
		t.Errorf("timeouts read=%v write=%v", srv.ReadTimeout, srv.WriteTimeout)
	}
	if srv.ReadHeaderTimeout == 0 {
		t.Error("ReadHeaderTimeout must be set")
	}
}

func TestHTTPServerService_ServesUntilCanceled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	svc := NewHTTPServerService("127.0.0.1:0", &http.Server{Handler: handler, ReadHeaderTimeout: time.Second}, time.Second)

	cancel, errCh := serveAsync(svc)
	addr := waitBound(t, svc)

	resp, err := http.Get(fmt.Sprintf("http://%s/", addr))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	cancel()
	if err := waitErr(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if svc.BoundAddr() != nil {
		t.Error("BoundAddr should be cleared after shutdown")
	}
}

func TestHTTPServerService_Failures(t *testing.T) {
	t.Run("address in use", func(t *testing.T) {
		taken, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		defer taken.Close()

		err = NewHTTPServerService(taken.Addr().String(), newStubServer(), time.Second).Serve(context.Background())
		if err == nil || !strings.Contains(err.Error(), "listen") {
			t.Errorf("Serve() = %v, want listen error", err)
		}
	})

	t.Run("serve error", func(t *testing.T) {
		boom := errors.New("accept: too many open files")
		server := newStubServer()
		server.serveErr = boom

		err := NewHTTPServerService("127.0.0.1:0", server, time.Second).Serve(context.Background())
		if !errors.Is(err, boom) {
			t.Errorf("Serve() = %v, want wrapped %v", err, boom)
		}
	})

	t.Run("closed without cancel", func(t *testing.T) {
		server := newStubServer()
		server.serveErr = http.ErrServerClosed

		if err := NewHTTPServerService("127.0.0.1:0", server, time.Second).Serve(context.Background()); err == nil {
			t.Error("Serve() = nil, want error so the supervisor restarts it")
		}
	})

	t.Run("shutdown error", func(t *testing.T) {
		shutdownErr := errors.New("shutdown timeout")
		server := newStubServer()
		server.shutdownErr = shutdownErr
		svc := NewHTTPServerService("127.0.0.1:0", server, time.Second)

		cancel, errCh := serveAsync(svc)
		waitBound(t, svc)
		cancel()

		if err := waitErr(t, errCh); !errors.Is(err, shutdownErr) {
			t.Errorf("Serve() = %v, want %v", err, shutdownErr)
		}
	})
}

func TestHTTPServerService_UnderSupervisor(t *testing.T) {
	server := newStubServer()
	svc := NewHTTPServerService("127.0.0.1:0", server, time.Second)

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	waitBound(t, svc)
	cancel()
	<-errCh

	if server.shutdowns.Load() < 1 {
		t.Error("Shutdown was not called")
	}
}

func TestPeriodicService(t *testing.T) {
	var runs atomic.Int32
	svc := NewPeriodicService("janitor", 5*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("task did not run twice")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if svc.String() != "janitor" {
		t.Errorf("String() = %q", svc.String())
	}
	if NewPeriodicService("x", 0, func(context.Context) {}).interval != time.Minute {
		t.Error("zero interval should default to one minute")
	}
}
