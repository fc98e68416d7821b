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
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tomtom215/pushward/internal/config"
	"github.com/tomtom215/pushward/internal/logging"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	Serve(ln net.Listener) error
	Shutdown(ctx context.Context) error
}

// NewOpsServer builds the ops HTTP server (probes, metrics, provider status
// and the optional deliver endpoint).
func NewOpsServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Timeout,
		WriteTimeout:      cfg.Timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// HTTPServerService binds addr and serves server on it under a supervisor.
// Binding happens inside Serve so a port conflict surfaces as a service
// failure that suture retries with backoff.
type HTTPServerService struct {
	addr            string
	server          HTTPServer
	shutdownTimeout time.Duration
	bound           atomic.Pointer[net.TCPAddr]
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout means 10s.
func NewHTTPServerService(addr string, server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &HTTPServerService{addr: addr, server: server, shutdownTimeout: shutdownTimeout}
}

// BoundAddr is the address actually listened on, or nil when not serving.
func (h *HTTPServerService) BoundAddr() *net.TCPAddr { return h.bound.Load() }

// Serve implements suture.Service. It returns ctx.Err() after a graceful
// shutdown and an error for bind failures, shutdown failures, or a server
// that stopped on its own.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.addr)
	if err != nil {
		return fmt.Errorf("ops http server: listen %s: %w", h.addr, err)
	}
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		h.bound.Store(tcp)
	}
	defer h.bound.Store(nil)

	logging.Info().Str("addr", ln.Addr().String()).Msg("Ops HTTP server listening")

	served := make(chan error, 1)
	go func() { served <- h.server.Serve(ln) }()

	select {
	case err := <-served:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return errors.New("ops http server: stopped unexpectedly")
		}
		return fmt.Errorf("ops http server: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ops http server: shutdown: %w", err)
		}
		<-served
		return ctx.Err()
	}
}

func (h *HTTPServerService) String() string { return "ops-http-server" }
