package transport

import (
	"context"
	"fmt"

	"nhooyr.io/websocket"

	"fleetsync/internal/app/errors"
)

const readLimit = 1 << 20

type nhooyrDialer struct{}

// NewNhooyrDialer creates a dialer backed by nhooyr.io/websocket
func NewNhooyrDialer() Dialer {
	return &nhooyrDialer{}
}

// Dial opens a websocket connection
func (d *nhooyrDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	conn, resp, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: %w (status %d)", errors.ErrFailedToDial, err, resp.StatusCode)
		}

		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToDial, err)
	}

	conn.SetReadLimit(readLimit)

	return &nhooyrConn{conn: conn}, nil
}

type nhooyrConn struct {
	conn *websocket.Conn
}

// Read returns the next data frame
func (c *nhooyrConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		if status := websocket.CloseStatus(err); status != -1 {
			var closeErr websocket.CloseError
			reason := ""

			if errors.As(err, &closeErr) {
				reason = closeErr.Reason
			}

			return nil, &CloseError{Code: int(status), Reason: reason}
		}

		return nil, err
	}

	return data, nil
}

// Close performs the closing handshake with code
func (c *nhooyrConn) Close(code int, reason string) error {
	return c.conn.Close(websocket.StatusCode(code), reason)
}
