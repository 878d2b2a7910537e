package bibleapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"versefinder/internal/model"
)

// DefaultBaseURL is the public bible-api.com endpoint.
const DefaultBaseURL = "https://bible-api.com/"

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
)

// apiVerse mirrors one entry of the service's "verses" array.
type apiVerse struct {
	BookID   string `json:"book_id"`
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

// apiResponse mirrors the fields we care about from a passage lookup.
// Error is only present on failures, e.g. {"error":"not found"}.
type apiResponse struct {
	Reference       string     `json:"reference"`
	Verses          []apiVerse `json:"verses"`
	Text            string     `json:"text"`
	TranslationID   string     `json:"translation_id"`
	TranslationName string     `json:"translation_name"`
	Error           string     `json:"error"`
}

// Client performs passage lookups against a bible-api.com compatible service.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout on the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient returns a client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: "versefinder",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// passageURL embeds the passage as a single path segment.
func (c *Client) passageURL(passage string) string {
	return c.baseURL.String() + url.PathEscape(passage)
}

// Fetch performs one GET for passage and decodes the result.
// Every failure is returned as a *TransportError.
func (c *Client) Fetch(ctx context.Context, passage string) (*model.VerseRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.passageURL(passage), nil)
	if err != nil {
		return nil, &TransportError{Kind: KindConnectivity, Passage: passage, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Kind: KindConnectivity, Passage: passage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Kind: KindConnectivity, Passage: passage, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Kind:       KindStatus,
			Passage:    passage,
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(body),
		}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &TransportError{Kind: KindDecode, Passage: passage, StatusCode: resp.StatusCode, Err: err}
	}
	if apiResp.Error != "" {
		// some deployments report lookup failures with a 200
		return nil, &TransportError{
			Kind:       KindStatus,
			Passage:    passage,
			StatusCode: http.StatusNotFound,
			Detail:     apiResp.Error,
		}
	}
	if apiResp.Reference == "" && len(apiResp.Verses) == 0 {
		return nil, &TransportError{Kind: KindDecode, Passage: passage, StatusCode: resp.StatusCode, Err: errors.New("response has no reference or verses")}
	}

	return toRecord(apiResp), nil
}

func toRecord(r apiResponse) *model.VerseRecord {
	rec := &model.VerseRecord{
		Reference:       r.Reference,
		Text:            r.Text,
		TranslationID:   r.TranslationID,
		TranslationName: r.TranslationName,
		Verses:          make([]model.VerseLine, len(r.Verses)),
	}
	for i, v := range r.Verses {
		rec.Verses[i] = model.VerseLine{
			BookID:   v.BookID,
			BookName: v.BookName,
			Chapter:  v.Chapter,
			Verse:    v.Verse,
			Text:     v.Text,
		}
	}
	return rec
}

// errorDetail extracts {"error": "..."} from a failure body, if present.
func errorDetail(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200] + "…"
	}
	return s
}
