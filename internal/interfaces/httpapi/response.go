package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/market-value-crawler/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "market-value-crawler"
	internalMessage  = "internal server error"
)

// envelope follows the Google JSON style guide: exactly one of data or error.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var (
	internalError = mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}

	errorClasses = []struct {
		target error
		mapped mappedError
	}{
		{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
		{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
		{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	}
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	_, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(w, status, envelope{APIVersion: googleAPIVersion, Data: data})
}

// writeError answers with the class of err. Messages of unclassified errors
// never reach the client.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	_, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(err)
	message := internalMessage
	if mapped != internalError {
		message = err.Error()
	}
	writeJSON(w, mapped.HTTPStatus, errorEnvelope(mapped, message))
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, internalError.HTTPStatus, errorEnvelope(internalError, internalMessage))
}

func errorEnvelope(mapped mappedError, message string) envelope {
	return envelope{
		APIVersion: googleAPIVersion,
		Error: &errorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: message}},
		},
	}
}

func mapError(err error) mappedError {
	for _, class := range errorClasses {
		if errors.Is(err, class.target) {
			return class.mapped
		}
	}
	return internalError
}
