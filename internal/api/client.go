package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/midtrans/midtrans-cli/internal/debug"
)

const DefaultTimeout = 30 * time.Second

// Requester performs one authenticated call against the gateway and
// classifies the outcome.
//
// Every call builds its own HTTP client from the arguments it is given, so a
// Requester holds no per-call state and is safe for concurrent use.
type Requester struct {
	// Timeout bounds the whole exchange. Zero selects DefaultTimeout.
	Timeout time.Duration
}

// Compile-time interface implementation check
var _ Executor = (*Requester)(nil)

// Request sends method to apiURL authenticated with serverKey.
//
// parameters is a JSON object document ("" for none). GET requests carry it as
// the query string, all other methods as the JSON body. The decoded response
// always contains a string status_code: the body's own value when present,
// otherwise the HTTP status. A status_code of 400 or above yields *APIError.
func (r *Requester) Request(ctx context.Context, method, serverKey, apiURL, parameters string, headers http.Header, proxy string) (Response, error) {
	params, err := DecodeParameters(parameters)
	if err != nil {
		return nil, err
	}

	httpClient, err := NewHTTPClient(headers, proxy, r.Timeout)
	if err != nil {
		return nil, err
	}
	defer httpClient.CloseIdleConnections()

	req, err := buildRequest(ctx, method, apiURL, params)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(serverKey, "")

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", method, "url", apiURL, "error", err)
		}
		return nil, &TransportError{Op: "send", Err: err}
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", method, "url", apiURL, "status", resp.StatusCode, "duration", time.Since(start))
	}

	decoded, err := decodeObject(respBody)
	if err != nil {
		return nil, &JSONDecodeError{Source: "response", Err: err}
	}
	body := Response(decoded)

	code, err := reconcileStatusCode(body, resp.StatusCode)
	if err != nil {
		return nil, err
	}
	if code >= 400 {
		return nil, &APIError{
			StatusCode: code,
			Response:   body,
			Header:     resp.Header.Clone(),
			Message: fmt.Sprintf(
				"Midtrans API is returning API error. HTTP status code: %d. API Response: Header %v Body %s",
				code, resp.Header, bytes.TrimSpace(respBody)),
		}
	}
	return body, nil
}

func buildRequest(ctx context.Context, method, apiURL string, params map[string]any) (*http.Request, error) {
	if method == http.MethodGet {
		target, err := withQuery(apiURL, params)
		if err != nil {
			return nil, &TransportError{Op: "build request", Err: err}
		}
		req, err := http.NewRequestWithContext(ctx, method, target, nil)
		if err != nil {
			return nil, &TransportError{Op: "build request", Err: err}
		}
		return req, nil
	}

	payload, err := json.Marshal(params)
	if err != nil {
		return nil, &JSONDecodeError{Source: "parameters", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, method, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}
	return req, nil
}

// withQuery appends params to the query already present in apiURL.
func withQuery(apiURL string, params map[string]any) (string, error) {
	if len(params) == 0 {
		return apiURL, nil
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := queryValue(params[k])
		if err != nil {
			return "", fmt.Errorf("query parameter %q: %w", k, err)
		}
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func queryValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// reconcileStatusCode makes sure body carries a string status_code and
// returns it as an integer. The body's own value wins over the HTTP status.
func reconcileStatusCode(body Response, httpStatus int) (int, error) {
	raw, ok := body[StatusCodeKey]
	if !ok {
		body[StatusCodeKey] = strconv.Itoa(httpStatus)
		return httpStatus, nil
	}

	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case json.Number:
		text = v.String()
	default:
		return 0, &ParseError{Value: fmt.Sprint(v), Err: errors.New("status_code is neither a string nor a number")}
	}

	code, err := strconv.ParseUint(text, 10, 16)
	if err != nil {
		return 0, &ParseError{Value: text, Err: err}
	}
	body[StatusCodeKey] = strconv.FormatUint(code, 10)
	return int(code), nil
}
