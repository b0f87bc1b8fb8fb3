// Package tcpserver accepts connections and pairs each one with a
// command stream draining into dispatch.Exec.
package tcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/zhangming/respflow/dispatch"
	"github.com/zhangming/respflow/resp"
	"github.com/zhangming/respflow/stream"
)

// Config stores tcp server properties.
type Config struct {
	Address    string
	MaxConnect uint32
	Timeout    time.Duration
}

// ActiveConn records the number of clients currently connected.
var ActiveConn int32

// Handler owns the set of live connections and answers Close by tearing
// all of them down.
type Handler struct {
	// Limits are the protocol bounds applied to every connection's
	// parser; zero fields mean the resp package defaults. Set before
	// serving.
	Limits resp.Limits

	activeConn sync.Map // net.Conn -> struct{}
	closing    atomic.Bool
}

// NewHandler returns a ready-to-use Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Close stops accepting and closes every tracked connection.
func (h *Handler) Close() error {
	slog.Info("handler shutting down...")
	h.closing.Store(true)
	h.activeConn.Range(func(key, _ interface{}) bool {
		conn := key.(net.Conn)
		_ = conn.Close()
		return true
	})
	return nil
}

// Handle services one accepted connection until it closes or a protocol
// error terminates the stream. A protocol error is a
// connection-terminating event at this layer.
func (h *Handler) Handle(ctx context.Context, conn net.Conn) {
	if h.closing.Load() {
		_ = conn.Close()
		return
	}
	h.activeConn.Store(conn, struct{}{})
	defer func() {
		h.activeConn.Delete(conn)
		_ = conn.Close()
	}()

	slog.Info("connection accepted", "remote", conn.RemoteAddr().String())
	for payload := range stream.ReadWithLimits(ctx, conn, h.Limits) {
		if payload.Err != nil {
			var perr *resp.ProtocolError
			if errors.As(payload.Err, &perr) {
				_, _ = conn.Write([]byte("-ERR " + perr.Error() + "\r\n"))
			}
			slog.Info("connection closed", "remote", conn.RemoteAddr().String(), "err", payload.Err)
			return
		}
		reply := dispatch.Exec(payload.Cmd)
		if _, err := conn.Write([]byte(reply)); err != nil {
			slog.Info("write failed, closing connection", "remote", conn.RemoteAddr().String(), "err", err)
			return
		}
	}
}

// Listener is the subset of net.Listener accept-loop behavior a handler
// needs; satisfied by *net.TCPListener.
type Listener interface {
	Accept() (net.Conn, error)
	Close() error
}

// ListenAndServeWithSignal binds cfg.Address and serves handler until a
// termination signal arrives, then drains in-flight connections before
// returning.
func ListenAndServeWithSignal(cfg *Config, handler *Handler) error {
	closeChan := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		closeChan <- struct{}{}
	}()
	listener, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("bind: %s, start listening...", cfg.Address))
	ListenAndServe(listener, handler, closeChan)
	return nil
}

// ListenAndServe runs the accept loop, blocking until closeChan fires or
// Accept fails terminally; it then closes the listener and every
// in-flight connection and waits for their handler goroutines to return.
func ListenAndServe(listener Listener, handler *Handler, closeChan <-chan struct{}) {
	errCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-closeChan:
			slog.Info("shutting down on signal")
		case err := <-errCh:
			slog.Info("accept error, shutting down", "err", err)
		}
		cancel()
		_ = listener.Close()
		_ = handler.Close()
	}()

	var waitDone sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				slog.Info("accept temporary error, retrying", "err", err)
				time.Sleep(5 * time.Millisecond)
				continue
			}
			errCh <- err
			break
		}
		atomic.AddInt32(&ActiveConn, 1)
		waitDone.Add(1)
		slog.Info(fmt.Sprintf("accept link, current client num: %d", atomic.LoadInt32(&ActiveConn)))
		go func() {
			defer func() {
				waitDone.Done()
				atomic.AddInt32(&ActiveConn, -1)
			}()
			handler.Handle(ctx, conn)
		}()
	}
	waitDone.Wait()
}
