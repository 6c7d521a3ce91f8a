package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/kiranshivaraju/vidforge/internal/api/response"
)

// Drain tracks in-flight requests so shutdown can wait for their deferred
// cleanup after their contexts are cancelled.
type Drain struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDrain() *Drain {
	return &Drain{}
}

// Track counts the request until its handler returns. Requests arriving after
// Wait has been called get a 503.
func (d *Drain) Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			w.Header().Set("Connection", "close")
			response.Error(w, http.StatusServiceUnavailable, "SHUTTING_DOWN", "Server is shutting down", nil)
			return
		}
		d.wg.Add(1)
		d.mu.Unlock()

		defer d.wg.Done()
		next.ServeHTTP(w, r)
	})
}

// Wait stops admitting requests and blocks until every tracked handler has
// returned or ctx is done.
func (d *Drain) Wait(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
