package crmclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestDecodeBareArray(t *testing.T) {
	var items []item
	if err := Decode([]byte(`[{"id":"a","name":"one"},{"id":"b","name":"two"}]`), &items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[1].Name != "two" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestDecodeEnvelope(t *testing.T) {
	var items []item
	if err := Decode([]byte(`{"success":true,"data":[{"id":"a","name":"one"}]}`), &items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "a" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestDecodeEnvelopeFailure(t *testing.T) {
	var items []item
	err := Decode([]byte(`{"success":false,"error":"nope"}`), &items)
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("expected rejection error, got %v", err)
	}
}

func TestDecodeEnvelopeWithoutData(t *testing.T) {
	var items []item
	if err := Decode([]byte(`{"success":true}`), &items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items != nil {
		t.Fatalf("expected no data, got %+v", items)
	}
}

func TestDecodeBareObject(t *testing.T) {
	var single item
	if err := Decode([]byte(`{"id":"c","name":"three"}`), &single); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if single.ID != "c" {
		t.Fatalf("unexpected item: %+v", single)
	}
}

func TestDecodeEmptyBody(t *testing.T) {
	var items []item
	if err := Decode([]byte("  \n"), &items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientSendsAuthAndUnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if r.URL.Path != "/leads" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"a","name":"one"}]}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, APIKey: "secret"})

	var items []item
	if err := client.Get(context.Background(), "/leads", &items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})

	var items []item
	err := client.Get(context.Background(), "/leads", &items)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status error, got %v", err)
	}
}
