package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dchest/uniuri"
	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/rs/zerolog"
)

// ErrSuperseded is the cancellation cause of a request replaced by a newer
// submission on the same Dispatcher.
var ErrSuperseded = errors.New(errors.ErrorTypeSuperseded, "request superseded by a newer one")

// Result is the outcome of one submitted request. Exactly one of Response
// and Err is set.
type Result struct {
	RequestID string
	Response  *Response
	Err       error
}

// Dispatcher sends requests without blocking the caller. At most one request
// is in flight: submitting a new one cancels the previous, whose Result
// then carries an ErrorTypeSuperseded error.
type Dispatcher struct {
	logger zerolog.Logger
	client HTTPClientProvider

	mu      sync.Mutex
	current string
	cancel  context.CancelCauseFunc
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher sending through client
func NewDispatcher(logger zerolog.Logger, client HTTPClientProvider) *Dispatcher {
	return &Dispatcher{
		logger: logger.With().Str("component", "dispatcher").Logger(),
		client: client,
	}
}

// Submit starts req in the background and returns a channel that receives
// exactly one Result. The channel is buffered, so an abandoned result never
// blocks the sender.
func (d *Dispatcher) Submit(ctx context.Context, req *http.Request) <-chan Result {
	id := uniuri.NewLen(10)
	reqCtx, cancel := context.WithCancelCause(ctx)

	d.mu.Lock()
	if d.cancel != nil {
		d.logger.Debug().
			Str("request_id", d.current).
			Str("superseded_by", id).
			Msg("cancelling in-flight request")
		d.cancel(ErrSuperseded)
	}
	d.current = id
	d.cancel = cancel
	d.mu.Unlock()

	out := make(chan Result, 1)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.release(id, cancel)
		out <- d.send(reqCtx, id, req.WithContext(reqCtx))
	}()
	return out
}

func (d *Dispatcher) send(ctx context.Context, id string, req *http.Request) Result {
	logger := d.logger.With().
		Str("request_id", id).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Logger()

	logger.Debug().Msg("dispatching request")

	start := time.Now()
	resp, err := d.client.Do(req)
	if err == nil {
		var read *Response
		read, err = readResponse(resp, req)
		if err == nil {
			read.RequestID = id
			read.Duration = time.Since(start)
			logger.Debug().
				Int("status", read.StatusCode).
				Dur("duration", read.Duration).
				Msg("request completed")
			return Result{RequestID: id, Response: read}
		}
	}

	duration := time.Since(start)
	if cause := context.Cause(ctx); cause == ErrSuperseded {
		logger.Debug().Dur("duration", duration).Msg("request superseded")
		return Result{
			RequestID: id,
			Err: errors.Wrap(err, errors.ErrorTypeSuperseded, "request superseded by a newer one").
				WithContext("request_id", id),
		}
	}

	logger.Error().Err(err).Dur("duration", duration).Msg("HTTP request failed")
	return Result{
		RequestID: id,
		Err: errors.Wrap(err, errors.ErrorTypeNetwork, "HTTP request failed").
			WithContext("url", req.URL.String()).
			WithContext("request_id", id).
			WithContext("duration", duration),
	}
}

// release clears the in-flight slot if id still owns it
func (d *Dispatcher) release(id string, cancel context.CancelCauseFunc) {
	d.mu.Lock()
	if d.current == id {
		d.current = ""
		d.cancel = nil
	}
	d.mu.Unlock()
	cancel(nil)
}

// Cancel aborts the in-flight request, if any
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel(context.Canceled)
	}
}

// Wait blocks until every submitted request has delivered its Result
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
