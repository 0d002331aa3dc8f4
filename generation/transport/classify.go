package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BaSui01/creativeflow/types"
)

// Outcome is the observable result of one attempt: a response or a transport error.
type Outcome struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
	Timeout    time.Duration
	Now        time.Time // reference time for HTTP-date Retry-After; zero means time.Now
}

// Decision tells the retry loop what to do with an Outcome.
// Err == nil means success. RetryAfter is the server hint, zero when absent.
type Decision struct {
	Retry      bool
	RetryAfter time.Duration
	Err        *types.Error
}

// Kind returns the error code of the decision, empty on success.
func (d Decision) Kind() types.ErrorCode {
	if d.Err == nil {
		return ""
	}
	return d.Err.Code
}

var jobEndpoint = regexp.MustCompile(`/jobs/([^/?#]+)(?:/cancel)?/?$`)

// JobIDFromEndpoint extracts the job id from a job status or cancel path.
func JobIDFromEndpoint(endpoint string) (string, bool) {
	path := endpoint
	if u, err := url.Parse(endpoint); err == nil {
		path = u.EscapedPath()
	}
	m := jobEndpoint.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	id, err := url.PathUnescape(m[1])
	if err != nil {
		id = m[1]
	}
	return id, true
}

// routeOf replaces the job id segment so metric labels stay bounded.
func routeOf(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil {
		endpoint = u.EscapedPath()
	}
	return jobEndpoint.ReplaceAllStringFunc(endpoint, func(m string) string {
		if strings.Contains(m, "/cancel") {
			return "/jobs/{id}/cancel"
		}
		return "/jobs/{id}"
	})
}

// Classify maps one attempt to a Decision. It performs no I/O.
func Classify(o Outcome, endpoint string) Decision {
	if o.Err != nil {
		if isTimeout(o.Err) {
			return Decision{Retry: true, Err: types.NewTransportTimeoutError(o.Timeout).WithCause(o.Err)}
		}
		return Decision{Retry: true, Err: types.NewServiceError(types.ServiceCodeNetwork, "network request failed").WithCause(o.Err)}
	}

	status := o.StatusCode
	if status >= 200 && status < 300 {
		return Decision{}
	}

	pe := parseProviderError(o.Body)
	msg := pe.message(status)

	switch {
	case status == http.StatusTooManyRequests:
		hint := retryAfter(o.Header, pe, o.Now)
		return Decision{Retry: true, RetryAfter: hint, Err: types.NewRateLimitError(msg, hint)}

	case status >= 500:
		e := types.NewServiceError(httpCode(status), msg).WithHTTPStatus(status).WithDetails(pe.Details)
		return Decision{Retry: true, Err: e}

	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Decision{Err: types.NewAuthenticationError(msg).WithHTTPStatus(status)}

	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		field := pe.Details["field"]
		if field == "" {
			field = "request"
		}
		e := types.NewValidationError(field, msg).WithHTTPStatus(status).WithDetails(pe.Details)
		return Decision{Err: e}

	case status == http.StatusNotFound:
		if id, ok := JobIDFromEndpoint(endpoint); ok {
			return Decision{Err: types.NewJobNotFoundError(id)}
		}
		e := types.NewServiceError(httpCode(status), msg).WithHTTPStatus(status).WithRetryable(false)
		return Decision{Err: e}

	default:
		e := types.NewServiceError(httpCode(status), msg).WithHTTPStatus(status).WithRetryable(false).WithDetails(pe.Details)
		return Decision{Err: e}
	}
}

func httpCode(status int) string {
	return "HTTP_" + strconv.Itoa(status)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// providerError accepts {"error":{"message","code","details"}}, {"error":"..."}
// and {"message","details"} bodies.
type providerError struct {
	Message    string
	Code       string
	Details    map[string]string
	RetryAfter float64
}

func (p providerError) message(status int) string {
	if p.Message != "" {
		return p.Message
	}
	if text := http.StatusText(status); text != "" {
		return strings.ToLower(text)
	}
	return fmt.Sprintf("unexpected status %d", status)
}

func parseProviderError(body []byte) providerError {
	var out providerError
	if len(body) == 0 {
		return out
	}
	var raw struct {
		Error      json.RawMessage `json:"error"`
		Message    string          `json:"message"`
		Code       any             `json:"code"`
		Details    map[string]any  `json:"details"`
		RetryAfter float64         `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		// 回退到原始文本
		out.Message = strings.TrimSpace(string(body))
		if len(out.Message) > 512 {
			out.Message = out.Message[:512]
		}
		return out
	}
	out.Message = raw.Message
	out.Code = stringify(raw.Code)
	out.Details = flatten(raw.Details)
	out.RetryAfter = raw.RetryAfter

	if len(raw.Error) > 0 {
		var nested struct {
			Message    string         `json:"message"`
			Code       any            `json:"code"`
			Details    map[string]any `json:"details"`
			RetryAfter float64        `json:"retry_after"`
		}
		var text string
		switch {
		case json.Unmarshal(raw.Error, &nested) == nil:
			if nested.Message != "" {
				out.Message = nested.Message
			}
			if c := stringify(nested.Code); c != "" {
				out.Code = c
			}
			if len(nested.Details) > 0 {
				out.Details = flatten(nested.Details)
			}
			if nested.RetryAfter > 0 {
				out.RetryAfter = nested.RetryAfter
			}
		case json.Unmarshal(raw.Error, &text) == nil && text != "":
			out.Message = text
		}
	}
	if out.Code != "" {
		if out.Details == nil {
			out.Details = map[string]string{}
		}
		if _, ok := out.Details["code"]; !ok {
			out.Details["code"] = out.Code
		}
	}
	return out
}

func flatten(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = stringify(v)
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// retryAfter reads the Retry-After header (seconds or HTTP date), then the body hint.
func retryAfter(h http.Header, pe providerError, now time.Time) time.Duration {
	if now.IsZero() {
		now = time.Now()
	}
	if v := strings.TrimSpace(h.Get("Retry-After")); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
		if at, err := http.ParseTime(v); err == nil {
			if d := at.Sub(now); d > 0 {
				return d
			}
		}
	}
	if pe.RetryAfter > 0 {
		return time.Duration(pe.RetryAfter * float64(time.Second))
	}
	return 0
}
