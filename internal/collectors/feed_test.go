package collectors

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"go.uber.org/zap"
)

func TestGetItemsFollowsPages(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.URL.Query().Get("q"); got != "go developer" {
			t.Errorf("unexpected query %q", got)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		_ = json.NewEncoder(w).Encode(ItemResponse{
			Items: []Item{{"title": fmt.Sprintf("item-%d", page)}},
			Found: 3,
			Pages: 3,
			Page:  page,
		})
	}))
	defer srv.Close()

	client := NewFeedClient("", zap.NewNop())
	items, err := client.GetItems(context.Background(), srv.URL, url.Values{"q": {"go developer"}})
	if err != nil {
		t.Fatalf("get items: %v", err)
	}

	if len(items) != 3 || requests != 3 {
		t.Fatalf("expected 3 items over 3 requests, got %d items and %d requests", len(items), requests)
	}
	for i, item := range items {
		if want := fmt.Sprintf("item-%d", i); item["title"] != want {
			t.Fatalf("item %d: expected %q, got %v", i, want, item["title"])
		}
	}
}

func TestGetItemsStopsAtPageLimit(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		_ = json.NewEncoder(w).Encode(ItemResponse{Items: []Item{{"title": "x"}}, Pages: 1000, Page: page})
	}))
	defer srv.Close()

	items, err := NewFeedClient("", nil).GetItems(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("get items: %v", err)
	}
	if requests != maxPages || len(items) != maxPages {
		t.Fatalf("expected %d requests, got %d (%d items)", maxPages, requests, len(items))
	}
}

func TestGetItemsGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "gzip" {
			t.Errorf("unexpected accept encoding %q", r.Header.Get("Accept-Encoding"))
		}
		if r.Header.Get("User-Agent") != "tests" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		_ = json.NewEncoder(gz).Encode(ItemResponse{Items: []Item{{"title": "zipped"}}, Pages: 1})
	}))
	defer srv.Close()

	items, err := NewFeedClient("tests", nil).GetItems(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("get items: %v", err)
	}
	if len(items) != 1 || items[0]["title"] != "zipped" {
		t.Fatalf("unexpected items %v", items)
	}
}

func TestGetItemsErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "bad status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "broken body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			if _, err := NewFeedClient("", nil).GetItems(context.Background(), srv.URL, nil); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
