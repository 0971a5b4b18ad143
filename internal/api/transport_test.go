package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestSendDecodesJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tr := NewTransport(server.Client())
	result, err := tr.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	record, ok := result.(map[string]any)
	if !ok || record["ok"] != true {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestSendQueryParamsSkipEmpty(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	query := url.Values{}
	query.Set("url", "https://amazon.in/dp/B01")
	query.Set("limit", "")

	tr := NewTransport(server.Client())
	if _, err := tr.Send(context.Background(), http.MethodGet, server.URL, nil, query); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotQuery.Get("url") != "https://amazon.in/dp/B01" {
		t.Fatalf("url param missing: %v", gotQuery)
	}
	if _, present := gotQuery["limit"]; present {
		t.Fatalf("empty limit param should be omitted: %v", gotQuery)
	}
}

func TestSendErrorBodyMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"product not found"}`, "product not found"},
		{"error field", `{"error":"bad url"}`, "bad url"},
		{"unparsable body", `<html>boom</html>`, "404 Not Found"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			tr := NewTransport(server.Client())
			_, err := tr.Send(context.Background(), http.MethodGet, server.URL, nil, nil)

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("expected TransportError, got %v", err)
			}
			if te.StatusCode != http.StatusNotFound {
				t.Fatalf("unexpected status: %d", te.StatusCode)
			}
			if te.Message != tc.want {
				t.Fatalf("got message %q, want %q", te.Message, tc.want)
			}
		})
	}
}

func TestSendEmptyOrNonJSONSuccess(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"", "OK"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		tr := NewTransport(server.Client())
		result, err := tr.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
		server.Close()

		if err != nil {
			t.Fatalf("body %q: expected empty result, got error %v", body, err)
		}
		if result != nil {
			t.Fatalf("body %q: expected nil result, got %#v", body, result)
		}
	}
}

func TestSendNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	tr := NewTransport(nil)
	_, err := tr.Send(context.Background(), http.MethodGet, server.URL, nil, nil)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.StatusCode != 0 {
		t.Fatalf("network failure should carry no status, got %d", te.StatusCode)
	}
}

func TestSendSerializesBody(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = jsonDecode(r, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	tr := NewTransport(server.Client())
	_, err := tr.Send(context.Background(), http.MethodPost, server.URL, map[string]any{"url": "u", "threshold": 99.0}, nil)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type: %q", gotContentType)
	}
	if gotBody["url"] != "u" || gotBody["threshold"] != 99.0 {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
