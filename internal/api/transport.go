package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const requestTimeout = 10 * time.Second

// Transport issues a single HTTP request and decodes the JSON response.
// It is stateless across calls: no retries, no caching, one shared client.
type Transport struct {
	client *http.Client
}

// NewTransport builds a transport with the fixed per-request timeout.
// A nil client gets the default one.
func NewTransport(client *http.Client) *Transport {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Transport{client: client}
}

// Send performs the request and returns the decoded JSON body. body is
// JSON-encoded when non-nil; query parameters with empty values are omitted.
// A 2xx response with an empty or non-JSON body yields (nil, nil) so read
// paths stay usable during partial backend outages. Any failure is reported
// as a *TransportError carrying a best-effort message.
func (t *Transport) Send(ctx context.Context, method, endpoint string, body any, query url.Values) (any, error) {
	reqURL := endpoint
	if len(query) > 0 {
		values := url.Values{}
		for key, vals := range query {
			for _, v := range vals {
				if v != "" {
					values.Add(key, v)
				}
			}
		}
		if encoded := values.Encode(); encoded != "" {
			reqURL = endpoint + "?" + encoded
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Message: "no response from server: " + err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: "read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// Malformed success body: an empty result, not a hard failure.
		return nil, nil
	}
	return decoded, nil
}

// errorMessage digs a human-readable message out of an error body, falling
// back to the HTTP status line when the body is not helpful.
func errorMessage(raw []byte, status string) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return status
}
