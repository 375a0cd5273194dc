// Package source talks to the BI server's export API. It is the only place
// retries happen; everything above treats a returned error as final.
package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client fetches CSV exports from the BI server.
type Client struct {
	httpClient       *http.Client
	baseURL          string
	token            string
	pageSize         int
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	log              zerolog.Logger
}

// ExportOptions narrows an export request.
type ExportOptions struct {
	// From/To bound the export date range, formatted YYYY-MM-DD. Empty
	// means unbounded on that side.
	From string
	To   string
}

// APIError is a non-2xx response from the BI server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("export api error: status=%d body=%s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("export api error: status=%d", e.StatusCode)
}

// NewClient builds an export client. The page size respects the BI
// server's per-call row cap; pages are fetched sequentially, never in
// parallel.
func NewClient(baseURL, token string, pageSize int, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration, log zerolog.Logger) *Client {
	if pageSize <= 0 {
		pageSize = 5000
	}
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	if retryMax <= 0 {
		retryMax = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 4 * time.Second
	}
	return &Client{
		httpClient:       &http.Client{Timeout: httpTimeout},
		baseURL:          strings.TrimRight(baseURL, "/"),
		token:            token,
		pageSize:         pageSize,
		retryMaxAttempts: retryMax,
		retryBaseDelay:   baseDelay,
		retryMaxDelay:    maxDelay,
		log:              log,
	}
}

// Export downloads the full CSV for a view, paging through the export API
// and concatenating pages minus their repeated header rows.
func (c *Client) Export(ctx context.Context, viewID string, opts ExportOptions) ([]byte, error) {
	if viewID == "" {
		return nil, errors.New("view id is required")
	}
	var out []byte
	offset := 0
	for {
		page, err := c.fetchPage(ctx, viewID, opts, offset)
		if err != nil {
			return nil, err
		}
		rows := dataRowCount(page)
		c.log.Debug().Str("view", viewID).Int("offset", offset).Int("rows", rows).Msg("fetched export page")
		if offset == 0 {
			out = page
		} else {
			out = appendWithoutHeader(out, page)
		}
		if rows < c.pageSize {
			return out, nil
		}
		offset += c.pageSize
	}
}

func (c *Client) fetchPage(ctx context.Context, viewID string, opts ExportOptions, offset int) ([]byte, error) {
	q := url.Values{}
	q.Set("view", viewID)
	q.Set("format", "csv")
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(c.pageSize))
	if opts.From != "" {
		q.Set("from", opts.From)
	}
	if opts.To != "" {
		q.Set("to", opts.To)
	}
	endpoint := c.baseURL + "/api/v1/export?" + q.Encode()

	backoff := c.retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Accept", "text/csv")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isRetryableNetErr(err) && attempt < c.retryMaxAttempts {
				lastErr = err
				c.sleep(backoff)
				backoff = c.nextBackoff(backoff)
				continue
			}
			return nil, fmt.Errorf("http request: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				return nil, fmt.Errorf("read export body: %w", readErr)
			}
			return body, nil
		}

		apiErr := &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
		if retryableStatus(resp.StatusCode) && attempt < c.retryMaxAttempts {
			lastErr = apiErr
			delay := backoff
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := parseRetryAfterSeconds(ra); err == nil && secs > 0 {
					delay = time.Duration(secs) * time.Second
				}
			}
			c.log.Debug().Int("status", resp.StatusCode).Dur("delay", delay).Msg("retrying export page")
			c.sleep(delay)
			backoff = c.nextBackoff(backoff)
			continue
		}
		return nil, apiErr
	}
	return nil, fmt.Errorf("export failed after %d attempts: %w", c.retryMaxAttempts, lastErr)
}

func (c *Client) sleep(d time.Duration) {
	time.Sleep(withJitter(d))
}

func (c *Client) nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > c.retryMaxDelay {
		d = c.retryMaxDelay
	}
	return d
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF)
}

// parseRetryAfterSeconds interprets a Retry-After header as seconds or an
// HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// withJitter applies +/- 20% jitter to a backoff duration.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	f := 0.8 + rand.Float64()*0.4
	return time.Duration(float64(d) * f)
}

// dataRowCount counts the CSV records after the header. Parsing as CSV
// rather than splitting on newlines keeps quoted fields with embedded
// newlines as one record.
func dataRowCount(page []byte) int {
	r := csv.NewReader(bytes.NewReader(page))
	r.FieldsPerRecord = -1
	n := -1
	for {
		if _, err := r.Read(); err != nil {
			break
		}
		n++
	}
	if n < 0 {
		return 0
	}
	return n
}

// appendWithoutHeader concatenates a follow-up page, dropping its repeated
// header record.
func appendWithoutHeader(dst, page []byte) []byte {
	r := csv.NewReader(bytes.NewReader(page))
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		return dst
	}
	rest := page[int(r.InputOffset()):]
	if len(dst) > 0 && dst[len(dst)-1] != '\n' && len(rest) > 0 {
		dst = append(dst, '\n')
	}
	return append(dst, rest...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
