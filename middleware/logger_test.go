package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetStatusColor(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   string
	}{
		{http.StatusOK, "\033[32m"},
		{http.StatusNoContent, "\033[32m"},
		{http.StatusMovedPermanently, "\033[36m"},
		{http.StatusNotModified, "\033[36m"},
		{http.StatusBadRequest, "\033[33m"},
		{http.StatusUnauthorized, "\033[33m"},
		{http.StatusTooManyRequests, "\033[33m"},
		{http.StatusInternalServerError, "\033[31m"},
		{http.StatusServiceUnavailable, "\033[31m"},
		{199, "\033[0m"},
		{http.StatusContinue, "\033[0m"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.statusCode), func(t *testing.T) {
			if got := getStatusColor(tt.statusCode); got != tt.expected {
				t.Errorf("Expected color code %q for status %d, got %q", tt.expected, tt.statusCode, got)
			}
		})
	}
}

func TestResponseRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := NewResponseRecorder(w)

	if rec.StatusCode != http.StatusOK || rec.BodySize != 0 {
		t.Fatalf("Unexpected initial recorder state %+v", rec)
	}

	rec.WriteHeader(http.StatusAccepted)
	for _, chunk := range []string{`{"currentLine":`, `"B"}`} {
		if _, err := rec.Write([]byte(chunk)); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if rec.StatusCode != http.StatusAccepted || w.Code != http.StatusAccepted {
		t.Errorf("Expected status %d recorded and forwarded, got %d / %d", http.StatusAccepted, rec.StatusCode, w.Code)
	}
	if rec.BodySize != len(`{"currentLine":"B"}`) {
		t.Errorf("Unexpected body size %d", rec.BodySize)
	}
}

func TestResponseRecorder_DefaultStatusCode(t *testing.T) {
	rec := NewResponseRecorder(httptest.NewRecorder())
	rec.Write([]byte("test"))

	if rec.StatusCode != http.StatusOK {
		t.Errorf("Expected default status code %d, got %d", http.StatusOK, rec.StatusCode)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		method     string
		statusCode int
	}{
		{"GET", http.StatusOK},
		{"POST", http.StatusCreated},
		{"DELETE", http.StatusNotFound},
		{"GET", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+http.StatusText(tt.statusCode), func(t *testing.T) {
			handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte("body"))
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/lyrics", nil))

			if rec.Code != tt.statusCode {
				t.Errorf("Expected status code %d, got %d", tt.statusCode, rec.Code)
			}
			if rec.Body.String() != "body" {
				t.Errorf("Expected body to pass through, got %q", rec.Body.String())
			}
		})
	}
}
