// Package geoprocessing is the only place in the service that performs
// outbound HTTP: typed calls to the external pygeoapi process for
// split-catchment and hydrolocation.
package geoprocessing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/internetofwater/nldi-go/internal/core/observability"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

const defaultTimeout = 30 * time.Second

// Client calls the remote geoprocessing endpoint. It retries exactly once
// on a connection reset; every other failure surfaces as a typed error.
type Client struct {
	logger  *slog.Logger
	httpc   *http.Client
	baseURL *url.URL
	enabled bool
	clock   clockwork.Clock // times each call for metrics; tests may substitute a fake clock
}

func New(logger *slog.Logger, httpc *http.Client, baseURL string, enabled bool) (*Client, error) {
	if !enabled {
		return &Client{logger: logger, enabled: false, clock: clockwork.NewRealClock()}, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, nldierrors.Wrap(nldierrors.ConfigurationError, "parse geoprocessing url", err)
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{logger: logger, httpc: httpc, baseURL: u, enabled: true, clock: clockwork.NewRealClock()}, nil
}

// SplitCatchmentResult is the (comid, measure, trim geometry) answer for a
// coordinate resolved with splitCatchment=true.
type SplitCatchmentResult struct {
	Comid       int64
	Measure     float64
	TrimGeoJSON string
}

// HydrolocationResult is the point-on-flowline answer for a coordinate.
type HydrolocationResult struct {
	Comid   int64
	Measure float64
}

func (c *Client) SplitCatchment(ctx context.Context, lon, lat float64) (SplitCatchmentResult, error) {
	var out struct {
		Comid     int64   `json:"comid"`
		Measure   float64 `json:"measure"`
		TrimmedFC string  `json:"trimmedCatchment"`
	}
	if err := c.call(ctx, "/split-catchment", map[string]any{"lon": lon, "lat": lat}, &out); err != nil {
		return SplitCatchmentResult{}, err
	}
	return SplitCatchmentResult{Comid: out.Comid, Measure: out.Measure, TrimGeoJSON: out.TrimmedFC}, nil
}

func (c *Client) Hydrolocation(ctx context.Context, lon, lat float64) (HydrolocationResult, error) {
	var out struct {
		Comid   int64   `json:"comid"`
		Measure float64 `json:"measure"`
	}
	if err := c.call(ctx, "/hydrolocation", map[string]any{"lon": lon, "lat": lat}, &out); err != nil {
		return HydrolocationResult{}, err
	}
	return HydrolocationResult{Comid: out.Comid, Measure: out.Measure}, nil
}

func (c *Client) call(ctx context.Context, path string, body any, out any) error {
	if !c.enabled {
		return nldierrors.New(nldierrors.ConfigurationError, "geoprocessing client is disabled")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nldierrors.Wrap(nldierrors.Internal, "encode geoprocessing request", err)
	}

	u := *c.baseURL
	u.Path = u.Path + path
	op := path

	start := c.clock.Now()
	resp, err := c.doWithRetry(ctx, u.String(), payload)
	observability.ObserveRemoteCall(op, c.clock.Since(start).Seconds(), err)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nldierrors.Wrap(nldierrors.RemoteTimeout, "geoprocessing call timed out", err)
		}
		return nldierrors.Wrap(nldierrors.RemoteServiceError, "geoprocessing call failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nldierrors.New(nldierrors.RemoteServiceError,
			fmt.Sprintf("geoprocessing upstream status %d: %s", resp.StatusCode, string(b)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nldierrors.Wrap(nldierrors.RemoteServiceError, "decode geoprocessing response", err)
	}
	return nil
}

// doWithRetry issues the request, retrying once if the connection was
// reset. Every other transport error or timeout is returned as-is for the
// caller to classify.
func (c *Client) doWithRetry(ctx context.Context, url string, payload []byte) (*http.Response, error) {
	resp, err := c.doOnce(ctx, url, payload)
	if err == nil {
		return resp, nil
	}
	if !isConnReset(err) {
		return nil, err
	}
	c.logger.Warn("geoprocessing call reset; retrying once", "url", url)
	return c.doOnce(ctx, url, payload)
}

func (c *Client) doOnce(ctx context.Context, url string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpc.Do(req)
}

func isConnReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET)
}
