package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"
)

// Send performs one request/response exchange with the owning capture
// process. The timeout bounds the whole exchange: dial, write, and read.
func Send(ctx context.Context, path string, req Request, timeout time.Duration) (Response, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return Response{}, fmt.Errorf("set exchange deadline: %w", err)
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("send command %q: %w", req.Command, err)
	}
	return readResponse(conn)
}

// readResponse decodes the single response line for an exchange.
func readResponse(conn net.Conn) (Response, error) {
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// Probe asks the socket's owner for its pipeline state. alive=false with a
// nil error means nothing answered: the socket is absent or stale.
func Probe(ctx context.Context, path string, timeout time.Duration) (state string, alive bool, err error) {
	resp, err := Send(ctx, path, Request{Command: "status"}, timeout)
	if err == nil {
		return resp.State, true, nil
	}
	if isSocketMissing(err) || isConnectionRefused(err) {
		return "", false, nil
	}
	return "", false, fmt.Errorf("probe socket: %w", err)
}

// isSocketMissing reports absent-socket failures.
func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist)
}

// isConnectionRefused reports no-listener failures.
func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
