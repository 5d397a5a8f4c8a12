package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/sethvargo/go-retry"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// apiStatusError is a non-OK "status" field in a Maps web service response.
type apiStatusError struct {
	Status  string
	Message string
}

func (e *apiStatusError) Error() string {
	if e.Message == "" {
		return "maps status " + e.Status
	}
	return fmt.Sprintf("maps status %s: %s", e.Status, e.Message)
}

// apiResponse is implemented by every decoded Maps response body.
type apiResponse interface {
	apiStatus() (status, message string)
}

type envelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (e envelope) apiStatus() (string, string) { return e.Status, e.ErrorMessage }

func (g *GoogleProvider) newRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	params.Set("key", g.apiKey)
	if g.language != "" {
		params.Set("language", g.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (g *GoogleProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := g.session.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redactKey(ue.URL)
		}
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// getJSON issues a GET to path and decodes the body into out, retrying
// transient failures (network errors, 429/5xx responses, and quota or
// unknown-error statuses) with exponential backoff. The backoff wait
// respects ctx cancellation.
func (g *GoogleProvider) getJSON(ctx context.Context, path string, params url.Values, out apiResponse) error {
	backoff := retry.WithMaxRetries(uint64(g.attempts-1), retry.NewExponential(g.backoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := g.newRequest(ctx, path, params)
		if err != nil {
			return err
		}

		resp, err := g.do(req)
		if err != nil {
			if isTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		defer resp.Body.Close()

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}

		status, msg := out.apiStatus()
		switch status {
		case "OK":
			return nil
		case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
			return retry.RetryableError(&apiStatusError{Status: status, Message: msg})
		default:
			return &apiStatusError{Status: status, Message: msg}
		}
	})
}

func isTransient(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// redactKey keeps the API key out of logged transport errors.
func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// isNoResult reports whether err is a status meaning the query matched nothing.
func isNoResult(err error) bool {
	var se *apiStatusError
	return errors.As(err, &se) && (se.Status == "ZERO_RESULTS" || se.Status == "NOT_FOUND")
}
