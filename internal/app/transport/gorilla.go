package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fleetsync/internal/app/errors"
)

const closeWriteTimeout = time.Second

type gorillaDialer struct {
	dialer websocket.Dialer
}

// NewGorillaDialer creates a dialer backed by gorilla/websocket
func NewGorillaDialer(handshakeTimeout time.Duration) Dialer {
	return &gorillaDialer{
		dialer: websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// Dial opens a websocket connection
func (d *gorillaDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: %w (status %d)", errors.ErrFailedToDial, err, resp.StatusCode)
		}

		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToDial, err)
	}

	return &gorillaConn{conn: conn}, nil
}

type gorillaConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

// Read returns the next data frame
func (c *gorillaConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return nil, &CloseError{Code: closeErr.Code, Reason: closeErr.Text}
		}

		return nil, err
	}

	return data, nil
}

// Close sends a close frame with code and tears down the socket
func (c *gorillaConn) Close(code int, reason string) error {
	var err error

	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))

		err = c.conn.Close()
	})

	return err
}
