package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDeliverPostsSendMessage(t *testing.T) {
	var captured sendMessageRequest
	var path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient("bot-token").WithBaseURL(server.URL)

	if err := client.Deliver(context.Background(), "-100123", "the report"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if path != "/botbot-token/sendMessage" {
		t.Fatalf("path = %s", path)
	}
	if captured.ChatID != "-100123" || captured.Text != "the report" {
		t.Fatalf("payload = %+v", captured)
	}
}

func TestDeliverSurfacesRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	client := NewClient("t").WithBaseURL(server.URL)

	err := client.Deliver(context.Background(), "x", "y")
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("err = %v", err)
	}
}

func TestDeliverSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("t").WithBaseURL(server.URL)

	if err := client.Deliver(context.Background(), "x", "y"); err == nil {
		t.Fatal("expected error from 502 response")
	}
}
