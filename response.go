package main

import (
	"encoding/json"
	"net/http"
)

// APIResponse handles consistent header setting and JSON responses
type APIResponse struct {
	w        http.ResponseWriter
	r        *http.Request
	provider string
	state    string
}

// Respond creates a response helper for the request
func Respond(w http.ResponseWriter, r *http.Request) *APIResponse {
	return &APIResponse{w: w, r: r}
}

// SetProvider sets the X-Provider header value
func (a *APIResponse) SetProvider(provider string) *APIResponse {
	a.provider = provider
	return a
}

// SetSyncState sets the X-Sync-State header value
func (a *APIResponse) SetSyncState(state string) *APIResponse {
	a.state = state
	return a
}

func (a *APIResponse) writeHeaders() {
	a.w.Header().Set("Content-Type", "application/json")
	if a.provider != "" {
		a.w.Header().Set("X-Provider", a.provider)
	}
	if a.state != "" {
		a.w.Header().Set("X-Sync-State", a.state)
	}
}

// JSON writes headers and encodes data as JSON (200 OK)
func (a *APIResponse) JSON(data interface{}) error {
	a.writeHeaders()
	return json.NewEncoder(a.w).Encode(data)
}

// Error writes headers, the status code and an ErrorResponse
func (a *APIResponse) Error(statusCode int, message string) error {
	a.writeHeaders()
	a.w.WriteHeader(statusCode)
	return json.NewEncoder(a.w).Encode(ErrorResponse{Error: message})
}
