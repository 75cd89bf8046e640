package productsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"comicstore-go/internal/domain/catalog"
	"comicstore-go/internal/platform/errors"
)

func TestGetAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"New Mutants","price":5990}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	products, err := client.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected one product, got %d", len(products))
	}
	if products[0].ID != 1 || products[0].Name != "New Mutants" || products[0].Price != 5990 {
		t.Fatalf("unexpected product: %+v", products[0])
	}
}

func TestGetAllEmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	products, err := client.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected empty list, got %d", len(products))
	}
}

func TestGetByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"product not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.GetByID(context.Background(), 42)
	if err == nil {
		t.Fatal("expected error for unknown product")
	}
	if !errors.IsKind(err, errors.KindCatalog) {
		t.Fatalf("expected catalog kind, got %v", err)
	}
	if got := errors.MessageOf(err, ""); got != "product not found" {
		t.Fatalf("expected server message, got %q", got)
	}
}

func TestCreateSendsBodyAndDecodesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		var sent catalog.Product
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		if sent.Name != "Patrulla X" {
			t.Errorf("unexpected request payload: %+v", sent)
		}
		sent.ID = 7
		_ = json.NewEncoder(w).Encode(map[string]any{"data": sent})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	created, err := client.Create(context.Background(), catalog.Product{Name: "Patrulla X", Price: 8990})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 7 {
		t.Fatalf("expected server-assigned id 7, got %d", created.ID)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		_, _ = w.Write([]byte(`{"data":{"id":3,"name":"Superior Ironman","price":15990}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	updated, err := client.Update(context.Background(), 3, catalog.Product{Name: "Superior Ironman", Price: 15990})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/products/3" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if updated.ID != 3 {
		t.Fatalf("unexpected updated product: %+v", updated)
	}

	if err := client.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/products/3" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
}

func TestTransportFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.GetAll(context.Background())
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !errors.IsKind(err, errors.KindTransport) {
		t.Fatalf("expected transport kind, got %v", err)
	}
}

func TestHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if !client.Healthy(context.Background()) {
		t.Fatal("expected healthy backend")
	}

	down := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	if down.Healthy(context.Background()) {
		t.Fatal("expected unreachable backend to read unhealthy")
	}
}
