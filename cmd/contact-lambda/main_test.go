package main

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func event(method, path, body string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Body:    body,
		Headers: map[string]string{"content-type": "application/json"},
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RequestID:  "lambda-req-1",
			DomainName: "api.fixitsanclemente.com",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   method,
				Path:     path,
				SourceIP: "203.0.113.7",
			},
		},
	}
}

type captured struct {
	method, path, query, body, realIP, requestID, host string
}

func recordingHandler(c *captured) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		*c = captured{
			method:    r.Method,
			path:      r.URL.Path,
			query:     r.URL.RawQuery,
			body:      string(raw),
			realIP:    r.Header.Get("X-Real-Ip"),
			requestID: r.Header.Get("X-Request-ID"),
			host:      r.Host,
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Add("Set-Cookie", "a=1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
}

func TestHandleReplaysEvent(t *testing.T) {
	var got captured
	evt := event(http.MethodPost, "/api/contact", `{"name":"Jane"}`)
	evt.RawQueryString = "src=footer"

	resp, err := handle(context.Background(), recordingHandler(&got), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if resp.Body != `{"success":true}` {
		t.Fatalf("unexpected body %q", resp.Body)
	}
	if resp.Headers["content-type"] != "application/json" {
		t.Fatalf("unexpected headers %v", resp.Headers)
	}
	if len(resp.Cookies) != 1 || resp.Cookies[0] != "a=1" {
		t.Fatalf("expected Set-Cookie moved to cookies, got %v", resp.Cookies)
	}

	want := captured{
		method:    http.MethodPost,
		path:      "/api/contact",
		query:     "src=footer",
		body:      `{"name":"Jane"}`,
		realIP:    "203.0.113.7",
		requestID: "lambda-req-1",
		host:      "api.fixitsanclemente.com",
	}
	if got != want {
		t.Fatalf("request mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestHandleDecodesBase64Body(t *testing.T) {
	var got captured
	evt := event(http.MethodPost, "/api/quote/analyze", base64.StdEncoding.EncodeToString([]byte(`{"description":"leaky faucet"}`)))
	evt.IsBase64Encoded = true

	if _, err := handle(context.Background(), recordingHandler(&got), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.body != `{"description":"leaky faucet"}` {
		t.Fatalf("unexpected decoded body %q", got.body)
	}
}

func TestHandleRejectsBadBase64(t *testing.T) {
	var got captured
	evt := event(http.MethodPost, "/api/contact", "%%%not-base64")
	evt.IsBase64Encoded = true

	resp, err := handle(context.Background(), recordingHandler(&got), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if got.method != "" {
		t.Fatalf("handler should not run for undecodable body")
	}
}

func TestHandleDefaultsStatusOK(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	resp, err := handle(context.Background(), h, event(http.MethodGet, "/health", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || resp.Body != "ok" {
		t.Fatalf("unexpected response %+v", resp)
	}
}
