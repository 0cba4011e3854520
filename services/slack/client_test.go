package slack_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"onair/services/slack"
)

func TestSendPostsBlockKitPayload(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := slack.NewClient(srv.URL)
	msg := slack.BuildScheduleMessage("2026-08-28", nil)
	if err := client.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	var decoded map[string]any
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if _, ok := decoded["blocks"]; !ok {
		t.Errorf("payload missing blocks: %s", gotBody)
	}
	if _, ok := decoded["text"]; !ok {
		t.Errorf("payload missing fallback text: %s", gotBody)
	}
}

func TestSendRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := slack.NewClient(srv.URL)
	if err := client.Send(context.Background(), slack.Message{Text: "x"}); err != nil {
		t.Fatalf("Send after retry: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestSendFailsFastOnBadRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid_blocks"))
	}))
	defer srv.Close()

	client := slack.NewClient(srv.URL)
	err := client.Send(context.Background(), slack.Message{Text: "x"})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on 4xx)", got)
	}
}

func TestSendRequiresWebhookURL(t *testing.T) {
	client := slack.NewClient("")
	if err := client.Send(context.Background(), slack.Message{Text: "x"}); err == nil {
		t.Fatal("expected error for missing webhook URL")
	}
}
