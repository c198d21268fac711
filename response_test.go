package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIResponse_Headers(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		state    string
	}{
		{"no headers", "", ""},
		{"provider only", "QQMusic", ""},
		{"provider and state", "LrcLib", "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", "/test", nil)

			Respond(w, r).SetProvider(tt.provider).SetSyncState(tt.state).JSON(map[string]string{"test": "data"})

			if got := w.Header().Get("X-Provider"); got != tt.provider {
				t.Errorf("X-Provider = %q, want %q", got, tt.provider)
			}
			if got := w.Header().Get("X-Sync-State"); got != tt.state {
				t.Errorf("X-Sync-State = %q, want %q", got, tt.state)
			}
			if got := w.Header().Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q", got)
			}
		})
	}
}

func TestAPIResponse_Error(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/lyrics", nil)

	Respond(w, r).Error(http.StatusBadRequest, "title is required")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Error != "title is required" {
		t.Errorf("Unexpected error body %+v", body)
	}
}
