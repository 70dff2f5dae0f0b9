// Package client talks to the resume insight backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/internal/domain/types"
	"github.com/okian/resumeinsight/pkg/logger"
)

// Default client configuration constants.
const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "resumeinsight/1.0"
	maxErrorBody     = 4 << 10

	// UploadField is the multipart field carrying the document.
	UploadField = "file"
)

// Backend endpoints.
const (
	pathInsights = "insights"
	pathUpload   = "upload-resume"
	pathLogin    = "login"
	pathReport   = "download-report"
)

// TokenSource supplies the current access token. An empty token means
// requests are sent without authorization.
type TokenSource interface {
	Token() string
}

// Client is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	timeout   time.Duration
	tokens    TokenSource
	userAgent string
	logger    logger.Logger
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		base:      u,
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Get().Named("client")
	}

	hc := http.Client{Timeout: c.timeout}
	if c.http != nil {
		hc = *c.http
		if hc.Timeout == 0 {
			hc.Timeout = c.timeout
		}
	}
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc.Transport = &metricsTransport{next: next}
	c.http = &hc

	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.base.String() }

// ListInsights returns the history listing in server order.
func (c *Client) ListInsights(ctx context.Context, q types.HistoryQuery) ([]model.Record, error) {
	u := c.base.JoinPath(pathInsights)
	u.RawQuery = q.Params().Encode()

	req, err := c.newRequest(ctx, "/insights", http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	if err := c.do(req, "list insights", &records); err != nil {
		return nil, err
	}
	c.logViolations(ctx, records...)
	return records, nil
}

// GetInsight returns a single record by document id.
func (c *Client) GetInsight(ctx context.Context, docID string) (model.Record, error) {
	u := c.base.JoinPath(pathInsights)
	u.RawQuery = url.Values{"doc_id": {docID}}.Encode()

	req, err := c.newRequest(ctx, "/insights", http.MethodGet, u, nil)
	if err != nil {
		return model.Record{}, err
	}

	var rec model.Record
	if err := c.do(req, "get insight", &rec); err != nil {
		return model.Record{}, err
	}
	c.logViolations(ctx, rec)
	return rec, nil
}

// Upload sends a document as a single multipart file part and returns the
// analysis the backend produced for it.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (model.Record, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(UploadField, filename)
	if err != nil {
		return model.Record{}, c.localError("upload", http.MethodPost, pathUpload, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return model.Record{}, c.localError("upload", http.MethodPost, pathUpload, err)
	}
	if err := mw.Close(); err != nil {
		return model.Record{}, c.localError("upload", http.MethodPost, pathUpload, err)
	}

	req, err := c.newRequest(ctx, "/upload-resume", http.MethodPost, c.base.JoinPath(pathUpload), &body)
	if err != nil {
		return model.Record{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var rec model.Record
	if err := c.do(req, "upload", &rec); err != nil {
		return model.Record{}, err
	}
	c.logViolations(ctx, rec)
	return rec, nil
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := c.newRequest(ctx, "/login", http.MethodPost, c.base.JoinPath(pathLogin), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out loginResponse
	if err := c.do(req, "login", &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &Error{Op: "login", Method: req.Method, URL: req.URL.String(), Kind: ErrDecode, Message: "missing access_token"}
	}
	return out.AccessToken, nil
}

// ReportURL returns the download link of a document's report.
func (c *Client) ReportURL(docID string) string {
	return c.base.JoinPath(pathReport, docID).String()
}

// DownloadReport streams a document's report into w.
func (c *Client) DownloadReport(ctx context.Context, docID string, w io.Writer) (int64, error) {
	u := c.base.JoinPath(pathReport, docID)
	req, err := c.newRequest(ctx, "/download-report", http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.send(req, "download report")
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &Error{Op: "download report", Method: req.Method, URL: req.URL.String(), Kind: ErrTransport, Cause: err}
	}
	return n, nil
}

func (c *Client) newRequest(ctx context.Context, endpoint, method string, u *url.URL, body io.Reader) (*http.Request, error) {
	ctx = context.WithValue(ctx, endpointKey{}, endpoint)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, c.localError(endpoint, method, u.String(), err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// send executes req and turns transport failures and non-2xx statuses into *Error.
func (c *Client) send(req *http.Request, op string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(req.Context(), "request failed",
			logger.String("op", op),
			logger.String("request_id", req.Header.Get("X-Request-ID")),
			logger.Error(err),
		)
		return nil, &Error{Op: op, Method: req.Method, URL: req.URL.String(), Kind: ErrTransport, Cause: err}
	}

	c.logger.Debug(req.Context(), "request completed",
		logger.String("op", op),
		logger.String("request_id", req.Header.Get("X-Request-ID")),
		logger.Int("status", resp.StatusCode),
		logger.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{
			Op:      op,
			Method:  req.Method,
			URL:     req.URL.String(),
			Status:  resp.StatusCode,
			Message: errorMessage(body),
			Kind:    kindFor(resp.StatusCode),
		}
	}
	return resp, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.send(req, op)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Method: req.Method, URL: req.URL.String(), Status: resp.StatusCode, Kind: ErrDecode, Cause: err}
	}
	return nil
}

func (c *Client) localError(op, method, target string, err error) error {
	return &Error{Op: op, Method: method, URL: target, Kind: ErrTransport, Cause: err}
}

func (c *Client) logViolations(ctx context.Context, records ...model.Record) {
	for _, rec := range records {
		if len(rec.Violations) == 0 {
			continue
		}
		c.logger.Debug(ctx, "insight payload does not match schema",
			logger.String("doc_id", rec.DocID),
			logger.Any("violations", rec.Violations),
		)
	}
}

// errorMessage extracts the backend's "detail" field, falling back to the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		return string(payload.Detail)
	}
	return strings.TrimSpace(string(body))
}
