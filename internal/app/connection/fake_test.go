package connection

import (
	"context"
	"sync"

	"fleetsync/internal/app/transport"
)

type readResult struct {
	data []byte
	err  error
}

// fakeConn replays scripted frames and records how it was closed
type fakeConn struct {
	reads  chan readResult
	closed chan struct{}
	once   sync.Once

	mu    sync.Mutex
	codes []int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		reads:  make(chan readResult, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) push(frame string) {
	c.reads <- readResult{data: []byte(frame)}
}

func (c *fakeConn) fail(err error) {
	c.reads <- readResult{err: err}
}

func (c *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case r := <-c.reads:
		return r.data, r.err
	case <-c.closed:
		return nil, &transport.CloseError{Code: transport.CloseNormalClosure}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Close(code int, _ string) error {
	c.mu.Lock()
	c.codes = append(c.codes, code)
	c.mu.Unlock()

	c.once.Do(func() { close(c.closed) })

	return nil
}

func (c *fakeConn) closeCodes() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]int(nil), c.codes...)
}

// fakeDialer hands out connections produced by dial and counts attempts
type fakeDialer struct {
	mu        sync.Mutex
	endpoints []string
	dial      func(ctx context.Context) (transport.Conn, error)
}

func (d *fakeDialer) Dial(ctx context.Context, endpoint string) (transport.Conn, error) {
	d.mu.Lock()
	d.endpoints = append(d.endpoints, endpoint)
	dial := d.dial
	d.mu.Unlock()

	return dial(ctx)
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.endpoints)
}

func (d *fakeDialer) lastEndpoint() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.endpoints) == 0 {
		return ""
	}

	return d.endpoints[len(d.endpoints)-1]
}

// connQueue dials successfully with freshly created connections
func connQueue() (func(ctx context.Context) (transport.Conn, error), func() []*fakeConn) {
	var (
		mu    sync.Mutex
		conns []*fakeConn
	)

	dial := func(context.Context) (transport.Conn, error) {
		conn := newFakeConn()

		mu.Lock()
		conns = append(conns, conn)
		mu.Unlock()

		return conn, nil
	}

	list := func() []*fakeConn {
		mu.Lock()
		defer mu.Unlock()

		return append([]*fakeConn(nil), conns...)
	}

	return dial, list
}

// recorder collects callbacks in delivery order
type recorder struct {
	mu       sync.Mutex
	events   []string
	messages []string
	errs     []error
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.events...)
}

func (r *recorder) messageTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.messages...)
}

func (r *recorder) failures() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]error(nil), r.errs...)
}
