// Package readiness waits for route hosts to stop answering
// 503 Service Unavailable.
package readiness

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/artpar/kiedeploy/internal/core/bundle"
	"k8s.io/apimachinery/pkg/util/wait"
)

const (
	DefaultInterval = time.Second
	DefaultTimeout  = 30 * time.Second
)

// ErrTimeout matches every TimeoutError.
var ErrTimeout = errors.New("timed out waiting for endpoint")

// TimeoutError names the host that never became available.
type TimeoutError struct {
	Host    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s not available after %s", e.Host, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// Waiter polls route endpoints. The zero value uses DefaultInterval,
// DefaultTimeout and http.DefaultClient.
type Waiter struct {
	Interval time.Duration
	Timeout  time.Duration
	Client   *http.Client
	Logger   *slog.Logger

	// InsecureSkipVerify accepts any server certificate on https routes,
	// e.g. self-signed certificates behind passthrough routes. Ignored
	// when Client is set.
	InsecureSkipVerify bool
}

// WaitForRoutes waits for every route with a host, one after the other.
// Each route gets its own Timeout. Routes without a host are skipped.
func (w *Waiter) WaitForRoutes(ctx context.Context, routes []*bundle.Route) error {
	for _, r := range routes {
		if r.Spec.Host == "" {
			continue
		}
		if err := w.WaitForURL(ctx, URL(r)); err != nil {
			return err
		}
	}
	return nil
}

// WaitForURL polls url until a request succeeds with any status other than
// 503, or the timeout elapses.
func (w *Waiter) WaitForURL(ctx context.Context, url string) error {
	interval, timeout := w.interval(), w.timeout()
	client := w.client()
	logger := w.logger().With("url", url)
	logger.Info("waiting for endpoint", "timeout", timeout)

	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(ctx context.Context) (bool, error) {
		status, err := probe(ctx, client, url)
		if err != nil {
			logger.Debug("endpoint not reachable", "error", err)
			return false, nil
		}
		if status == http.StatusServiceUnavailable {
			logger.Debug("endpoint unavailable", "status", status)
			return false, nil
		}
		logger.Info("endpoint available", "status", status)
		return true, nil
	})
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && wait.Interrupted(err) {
		return &TimeoutError{Host: url, Timeout: timeout}
	}
	return fmt.Errorf("failed to wait for %s: %w", url, err)
}

func probe(ctx context.Context, client *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// URL is the address a route is reachable at: https for secure routes.
func URL(r *bundle.Route) string {
	scheme := "http"
	if r.Secure() {
		scheme = "https"
	}
	return scheme + "://" + r.Spec.Host + r.Spec.Path
}

func (w *Waiter) interval() time.Duration {
	if w.Interval > 0 {
		return w.Interval
	}
	return DefaultInterval
}

func (w *Waiter) timeout() time.Duration {
	if w.Timeout > 0 {
		return w.Timeout
	}
	return DefaultTimeout
}

func (w *Waiter) client() *http.Client {
	if w.Client != nil {
		return w.Client
	}
	if w.InsecureSkipVerify {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		return &http.Client{Transport: transport}
	}
	return http.DefaultClient
}

func (w *Waiter) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger.With("component", "readiness")
	}
	return slog.Default().With("component", "readiness")
}
