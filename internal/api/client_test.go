package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"banhangso/client/internal/domain"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("tok-123"), zap.NewNop())
	if err := client.Get(context.Background(), "/products", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestDoSkipsAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken(""), zap.NewNop())
	if err := client.Get(context.Background(), "/products", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestDoNormalizesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"số điện thoại không hợp lệ"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil, zap.NewNop())
	err := client.Post(context.Background(), "/customers", map[string]string{}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", apiErr.Status)
	}
	if apiErr.Message != "số điện thoại không hợp lệ" {
		t.Fatalf("expected server message, got %q", apiErr.Message)
	}
}

func TestDoAcceptsErrorFieldVariant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"category still has products"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil, zap.NewNop())
	err := client.Delete(context.Background(), "/categories/c1")
	var apiErr *Error
	if !asAPIError(err, &apiErr) || apiErr.Message != "category still has products" {
		t.Fatalf("expected server error message, got %v", err)
	}
}

func TestDoFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil, zap.NewNop())
	err := client.Get(context.Background(), "/products", nil)
	var apiErr *Error
	if !asAPIError(err, &apiErr) || apiErr.Message != "Internal Server Error" {
		t.Fatalf("expected status-text fallback, got %v", err)
	}
}

func TestDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := New(srv.URL, nil, zap.NewNop())
	err := client.Get(context.Background(), "/products", nil)
	if !IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	var apiErr *Error
	if !asAPIError(err, &apiErr) || apiErr.Message != "network error" {
		t.Fatalf("expected generic network message, got %v", err)
	}
}

func TestUnauthorizedHookFires(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"unauthorized"}`))
	}))
	defer srv.Close()

	fired := 0
	client := New(srv.URL, nil, zap.NewNop(), WithUnauthorizedHook(func() { fired++ }))
	err := client.Get(context.Background(), "/auth/me", nil)
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected hook to fire once, fired %d times", fired)
	}
}

func TestDecodePageBareArray(t *testing.T) {
	page, err := DecodePage[domain.Customer](json.RawMessage(`[{"id":"c1","name":"Nguyen Van A"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "c1" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
	if page.Total != 1 || page.TotalPages != 1 {
		t.Fatalf("expected synthesized totals, got %+v", page)
	}
}

func TestDecodePageEnvelope(t *testing.T) {
	raw := json.RawMessage(`{"data":[{"id":"p1","sku":"S1","name":"Gạo"}],"total":41,"totalPages":3}`)
	page, err := DecodePage[domain.Product](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 41 || page.TotalPages != 3 {
		t.Fatalf("expected envelope totals preserved, got %+v", page)
	}
}

func TestDecodePageEmpty(t *testing.T) {
	page, err := DecodePage[domain.Product](json.RawMessage(`[]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 0 || page.TotalPages != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
}

func TestDecodeEntityBareAndWrapped(t *testing.T) {
	bare, err := DecodeEntity[domain.Customer](json.RawMessage(`{"id":"c1","name":"A"}`))
	if err != nil || bare.ID != "c1" {
		t.Fatalf("bare decode failed: %v %+v", err, bare)
	}
	wrapped, err := DecodeEntity[domain.Customer](json.RawMessage(`{"data":{"id":"c2","name":"B"}}`))
	if err != nil || wrapped.ID != "c2" {
		t.Fatalf("wrapped decode failed: %v %+v", err, wrapped)
	}
}

func TestListBuildsQueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil, zap.NewNop())
	_, err := List[domain.Product](context.Background(), client, "/products", domain.ListParams{Page: 2, Limit: 20, Search: "gạo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "limit=20&page=2&search=g%E1%BA%A1o" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func asAPIError(err error, target **Error) bool {
	apiErr, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = apiErr
	return true
}
