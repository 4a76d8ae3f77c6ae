package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"attempt":%d}`, calls)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i+1, rec.Code)
		}
		if rec.Body.String() != `{"attempt":1}` {
			t.Errorf("request %d: expected first response replayed, got %s", i+1, rec.Body.String())
		}
	}

	if calls != 1 {
		t.Errorf("expected handler invoked once, got %d", calls)
	}
}

func TestIdempotency_ErrorsNotCached(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Errorf("expected failed responses to be retried, handler called %d times", calls)
	}
}

func TestIdempotency_MissingKeyBypasses(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/bookings", nil))
	}

	if calls != 2 {
		t.Errorf("expected every request handled without a key, got %d calls", calls)
	}
}
