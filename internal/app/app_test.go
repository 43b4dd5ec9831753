package app

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestServeHTTP_ReturnsWhenPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()

	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}
	done := make(chan error, 1)
	go func() { done <- serveHTTP(context.Background(), srv) }()

	select {
	case errServe := <-done:
		if errServe == nil {
			t.Fatalf("expected listen error")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serveHTTP did not return after listen failure")
	}
}

func TestServeHTTP_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: addr, Handler: http.NotFoundHandler()}
	done := make(chan error, 1)
	go func() { done <- serveHTTP(ctx, srv) }()
	cancel()

	select {
	case errServe := <-done:
		if errServe != nil {
			t.Fatalf("expected clean shutdown, got %v", errServe)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serveHTTP did not return after cancel")
	}
}
