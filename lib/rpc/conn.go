// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hotpreview/hotpreview/lib/codec"
	"github.com/hotpreview/hotpreview/lib/netutil"
)

// HandlerFunc processes one inbound request or notification. params is
// the raw CBOR parameter value, empty when the caller sent none; decode
// it with [DecodeParams].
//
// The returned value is CBOR-encoded into the response. A nil value
// produces a response with no result. For notifications the result is
// discarded and errors are only logged.
type HandlerFunc func(ctx context.Context, params codec.RawMessage) (any, error)

const (
	kindRequest      = "request"
	kindResponse     = "response"
	kindNotification = "notification"
)

// message is the wire envelope for every value on the stream.
type message struct {
	Kind   string           `cbor:"kind"`
	ID     uint64           `cbor:"id,omitempty"`
	Method string           `cbor:"method,omitempty"`
	Params codec.RawMessage `cbor:"params,omitempty"`
	Result codec.RawMessage `cbor:"result,omitempty"`
	Error  *Error           `cbor:"error,omitempty"`
}

// Conn is one end of an RPC connection. Register handlers with Handle,
// then run Serve. Call and Notify may be used from any goroutine once
// Serve is running.
type Conn struct {
	stream io.ReadWriteCloser
	logger *slog.Logger

	handlers map[string]HandlerFunc
	serving  atomic.Bool

	writeMu sync.Mutex
	encoder *codec.Encoder

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan *message
	closed  bool
	err     error

	// inflight tracks handler goroutines. Serve waits for them before
	// reporting the connection done.
	inflight sync.WaitGroup

	closeOnce sync.Once
	done      chan struct{}
}

// NewConn wraps a byte stream. The Conn takes ownership of stream and
// closes it when Serve returns.
func NewConn(stream io.ReadWriteCloser, logger *slog.Logger) *Conn {
	return &Conn{
		stream:   stream,
		logger:   logger,
		handlers: make(map[string]HandlerFunc),
		encoder:  codec.NewEncoder(stream),
		pending:  make(map[uint64]chan *message),
		done:     make(chan struct{}),
	}
}

// Handle registers a handler for method. Panics if the method is
// already registered or Serve has started.
func (c *Conn) Handle(method string, handler HandlerFunc) {
	if c.serving.Load() {
		panic(fmt.Sprintf("rpc.Conn: Handle(%q) called after Serve", method))
	}
	if _, exists := c.handlers[method]; exists {
		panic(fmt.Sprintf("rpc.Conn: duplicate handler for method %q", method))
	}
	c.handlers[method] = handler
}

// Serve reads messages until the stream fails, the peer disconnects,
// Close is called, or ctx is cancelled. Handler contexts derive from
// ctx and are cancelled when Serve returns.
//
// Serve returns nil for an orderly end (EOF, closed stream, reset, or
// cancellation) and the read error otherwise. Outstanding calls fail
// with ErrClosed. Serve must be called at most once.
func (c *Conn) Serve(ctx context.Context) error {
	if c.serving.Swap(true) {
		panic("rpc.Conn: Serve called twice")
	}

	handlerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unblock the decoder when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	decoder := codec.NewDecoder(c.stream)
	var err error
	for {
		var frame codec.RawMessage
		if decodeErr := decoder.Decode(&frame); decodeErr != nil {
			if ctx.Err() == nil && !netutil.IsExpectedCloseError(decodeErr) && !c.isClosing() {
				err = fmt.Errorf("reading message: %w", decodeErr)
			}
			break
		}
		var msg message
		if decodeErr := codec.Unmarshal(frame, &msg); decodeErr != nil {
			c.logMalformed(frame, decodeErr)
			continue
		}
		c.dispatch(handlerCtx, &msg)
	}

	c.Close()
	c.failPending(err)
	cancel()
	c.inflight.Wait()
	close(c.done)
	return err
}

// Close closes the underlying stream. Serve returns shortly after.
// Safe to call multiple times and from any goroutine.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		err = c.stream.Close()
	})
	return err
}

// Done is closed when Serve has returned and every handler finished.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err returns the error Serve returned. Only meaningful after Done is
// closed.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Call sends a request and waits for its response. On success the
// result, if any, is decoded into result (which may be nil to discard
// it). A failure reported by the peer is returned as an *Error.
func (c *Conn) Call(ctx context.Context, method string, params, result any) error {
	raw, err := encodeParams(params)
	if err != nil {
		return fmt.Errorf("encoding params for %s: %w", method, err)
	}

	responses := make(chan *message, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = responses
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.write(&message{Kind: kindRequest, ID: id, Method: method, Params: raw}); err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case response, ok := <-responses:
		if !ok {
			return ErrClosed
		}
		if response.Error != nil {
			return response.Error
		}
		if result != nil && len(response.Result) > 0 {
			if err := codec.Unmarshal(response.Result, result); err != nil {
				return fmt.Errorf("decoding %s result: %w", method, err)
			}
		}
		return nil
	}
}

// Notify sends a notification. It returns once the message is written;
// the peer sends no reply.
func (c *Conn) Notify(ctx context.Context, method string, params any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encodeParams(params)
	if err != nil {
		return fmt.Errorf("encoding params for %s: %w", method, err)
	}
	if err := c.write(&message{Kind: kindNotification, Method: method, Params: raw}); err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}
	return nil
}

// DecodeParams decodes request parameters into v. A decode failure is
// returned as a CodeInvalidParams *Error. Empty params leave v
// unchanged.
func DecodeParams(params codec.RawMessage, v any) error {
	if len(params) == 0 {
		return nil
	}
	if err := codec.Unmarshal(params, v); err != nil {
		return Errorf(CodeInvalidParams, "%v", err)
	}
	return nil
}

// logMalformed reports a well-formed CBOR value that is not a message
// envelope. The stream stays usable, so the value is skipped.
func (c *Conn) logMalformed(frame codec.RawMessage, decodeErr error) {
	diagnostic, err := codec.Diagnose(frame)
	if err != nil {
		diagnostic = fmt.Sprintf("%x", []byte(frame))
	}
	c.logger.Debug("skipping malformed message", "error", decodeErr, "diagnostic", diagnostic)
}

func (c *Conn) dispatch(ctx context.Context, msg *message) {
	switch msg.Kind {
	case kindResponse:
		c.mu.Lock()
		responses, ok := c.pending[msg.ID]
		delete(c.pending, msg.ID)
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("response for unknown request", "id", msg.ID)
			return
		}
		responses <- msg

	case kindRequest, kindNotification:
		// Replies are written off the read loop so a peer that is itself
		// blocked writing can never deadlock the two loops.
		c.inflight.Add(1)
		go func() {
			defer c.inflight.Done()
			c.handle(ctx, msg)
		}()

	default:
		c.logger.Debug("ignoring message of unknown kind", "kind", msg.Kind)
	}
}

func (c *Conn) handle(ctx context.Context, msg *message) {
	handler, ok := c.handlers[msg.Method]
	if !ok {
		if msg.Kind == kindRequest {
			c.reply(msg.ID, nil, Errorf(CodeMethodNotFound, "unknown method %q", msg.Method))
		} else {
			c.logger.Debug("notification for unknown method", "method", msg.Method)
		}
		return
	}

	result, err := handler(ctx, msg.Params)
	if msg.Kind == kindNotification {
		if err != nil {
			c.logger.Warn("notification handler failed", "method", msg.Method, "error", err)
		}
		return
	}
	if err != nil {
		c.logger.Debug("method failed", "method", msg.Method, "error", err)
	}
	c.reply(msg.ID, result, err)
}

// reply sends the response to request id. Write failures are logged at
// debug level: the connection is ending and the read loop will notice.
func (c *Conn) reply(id uint64, result any, handlerErr error) {
	response := &message{Kind: kindResponse, ID: id}
	if handlerErr != nil {
		response.Error = toError(handlerErr)
	} else if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			response.Error = Errorf(CodeInternal, "marshaling result: %v", err)
		} else {
			response.Result = data
		}
	}
	if err := c.write(response); err != nil {
		c.logger.Debug("failed to write response", "id", id, "error", err)
	}
}

func (c *Conn) write(msg *message) error {
	if c.isClosing() {
		return ErrClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.encoder.Encode(msg)
}

func (c *Conn) isClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// failPending records the terminal error and wakes every waiting Call.
func (c *Conn) failPending(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.err = err
	for id, responses := range c.pending {
		close(responses)
		delete(c.pending, id)
	}
}

func encodeParams(params any) (codec.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	return codec.Marshal(params)
}
