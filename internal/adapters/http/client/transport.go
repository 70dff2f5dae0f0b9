package client

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/resumeinsight/pkg/metrics"
)

type endpointKey struct{}

// metricsTransport records Prometheus metrics for every round trip.
type metricsTransport struct {
	next http.RoundTripper
}

func (t *metricsTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	endpoint, _ := r.Context().Value(endpointKey{}).(string)
	if endpoint == "" {
		endpoint = r.URL.Path
	}

	resp, err := t.next.RoundTrip(r)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.RecordAPIRequest(endpoint, r.Method, status)
	metrics.RecordAPIRequestDuration(endpoint, r.Method, status, durationMs)

	if err != nil {
		metrics.RecordErrorByComponent("client", "transport")
	} else if resp.StatusCode >= http.StatusBadRequest {
		metrics.RecordErrorByComponent("client", errorType(resp.StatusCode))
	}
	return resp, err
}

// errorType returns a standardized error type based on HTTP status code.
func errorType(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "server_error"
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return "unauthorized"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limit"
	default:
		return "client_error"
	}
}

// kindFor maps a non-success status to its sentinel kind.
func kindFor(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrStatus
	}
}
