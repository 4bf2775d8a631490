package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestMockSourceDeterministic(t *testing.T) {
	s := MockSource{}
	first, err := s.FetchComments(context.Background(), "https://shop.example.com/phone-a", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Rows) < 3 {
		t.Fatalf("expected at least 3 rows, got %d", len(first.Rows))
	}
	again, err := s.FetchComments(context.Background(), "https://shop.example.com/phone-a", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, again) {
		t.Fatalf("rows differ between calls for the same url")
	}
}

func TestMockSourceHonorsLimit(t *testing.T) {
	s := MockSource{}
	table, err := s.FetchComments(context.Background(), "https://shop.example.com/phone-b", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
}

func TestHTTPSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") == "" {
			t.Errorf("missing url query param")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"comments": []map[string]string{
				{"comment": "battery drains too fast", "product": "PhoneA", "customer_id": "c1", "date": "2026-08-01"},
				{"comment": "love the camera", "product": "PhoneA", "customer_id": "c2", "date": "2026-08-02"},
			},
		})
	}))
	defer srv.Close()

	s := HTTPSource{BaseURL: srv.URL, Client: srv.Client()}
	table, err := s.FetchComments(context.Background(), "https://shop.example.com/phone-a", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0]["comment"] != "battery drains too fast" {
		t.Fatalf("row mangled: %+v", table.Rows[0])
	}
}

func TestHTTPSourceNoComments(t *testing.T) {
	for _, handler := range []http.HandlerFunc{
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) },
		func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(`{"comments": []}`)) },
	} {
		srv := httptest.NewServer(handler)
		s := HTTPSource{BaseURL: srv.URL, Client: srv.Client()}
		_, err := s.FetchComments(context.Background(), "https://shop.example.com/empty", 10)
		srv.Close()
		if !errors.Is(err, ErrNoComments) {
			t.Fatalf("expected ErrNoComments, got %v", err)
		}
	}
}
