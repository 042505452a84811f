package utils

import (
	"encoding/json"
	"net/http"
)

const (
	// Request Error Codes
	ErrRequestInvalid           = "request/invalid_parameters"
	ErrRequestBodyTooLarge      = "request/body_too_large"
	ErrRequestUnSupportedMedia  = "request/invalid_media"
	ErrRequestRateLimitExceeded = "request/rate_limit_exceeded"

	// Auth Error Codes
	ErrAuthRequired        = "auth/authentication_required"
	ErrAuthInvalid         = "auth/invalid_credentials"
	ErrAuthRateLimitExceed = "auth/rate_limit_exceeded"

	// Validation & Resource Error Codes
	ErrValidationFailed = "validation/invalid_parameters"
	ErrResourceNotFound = "resource/not_found"
	ErrResourceConflict = "resource/conflict"

	// Storage & Server Error Codes
	ErrStorageIO      = "storage/io_failed"
	ErrServerInternal = "server/internal_error"
)

// Envelope is the JSON body of every successful response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// APIError is the JSON body of every failed response.
type APIError struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`    // e.g., "request/invalid_parameters"
	Message string `json:"message"` // User-friendly message
	Status  int    `json:"status"`  // HTTP Status Code
}

// WriteData sends a success envelope carrying a data payload.
func WriteData(w http.ResponseWriter, status int, data interface{}) {
	writeEnvelope(w, status, Envelope{Success: true, Data: data})
}

// WriteMessage sends a success envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, Envelope{Success: true, Message: message})
}

// WriteDataMessage sends a success envelope with both a payload and a message.
func WriteDataMessage(w http.ResponseWriter, status int, data interface{}, message string) {
	writeEnvelope(w, status, Envelope{Success: true, Data: data, Message: message})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// WriteError sends a JSON formatted error response.
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIError{
		Code:    code,
		Message: message,
		Status:  status,
	})
}
