package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Handler processes one control command against the live pipeline.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve accepts control connections on the capture socket until the context
// ends or the listener closes. Each connection carries exactly one JSON
// request line and receives exactly one JSON response line.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept control connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()
			serveConn(ctx, c, handler)
		}(conn)
	}
}

// serveConn runs one request/response exchange.
func serveConn(ctx context.Context, conn net.Conn, handler Handler) {
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		respondMalformed(ctx, conn, handler, fmt.Sprintf("read control request: %v", err))
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		respondMalformed(ctx, conn, handler, fmt.Sprintf("decode control request: %v", err))
		return
	}

	_ = json.NewEncoder(conn).Encode(handler.Handle(ctx, req))
}

// respondMalformed rejects an unreadable request. The error response still
// carries the current pipeline state, so a confused caller can at least see
// whether a capture is in progress.
func respondMalformed(ctx context.Context, conn net.Conn, handler Handler, reason string) {
	resp := Response{OK: false, Error: reason}
	if status := handler.Handle(ctx, Request{Command: "status"}); status.OK {
		resp.State = status.State
	}
	_ = json.NewEncoder(conn).Encode(resp)
}
