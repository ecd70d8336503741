// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoverer(t *testing.T) {
	panics := []struct {
		name  string
		value any
	}{
		{"string", "something went wrong"},
		{"integer", 42},
		{"arbitrary value", strings.NewReader("error reader")},
	}

	for _, tt := range panics {
		t.Run(tt.name, func(t *testing.T) {
			handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/pages", nil))

			if rr.Code != http.StatusInternalServerError {
				t.Errorf("status: got %d, want 500", rr.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %q", rr.Body.String())
			}
			if body["error"] == "" {
				t.Errorf("missing error message: %v", body)
			}
		})
	}
}

func TestRecovererReraisesAbort(t *testing.T) {
	handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRecovererNoPanic(t *testing.T) {
	handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "test-value")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	if rr.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("body: got %q, want %q", rr.Body.String(), "ok")
	}
	if got := rr.Header().Get("X-Custom"); got != "test-value" {
		t.Errorf("X-Custom: got %q, want %q", got, "test-value")
	}
}
