package services

import (
	"errors"
	"net/http"
)

// LifecycleError is a structured failure returned by the order lifecycle
// engine. Code is a stable machine-readable identifier, HTTPStatus the
// status controllers should respond with.
type LifecycleError struct {
	Code       string
	HTTPStatus int
	Message    string
}

func (e *LifecycleError) Error() string {
	return e.Message
}

// AsLifecycleError extracts a *LifecycleError from err, wrapping anything
// else (driver failures, broken connections) as a generic database error.
func AsLifecycleError(err error) *LifecycleError {
	var le *LifecycleError
	if errors.As(err, &le) {
		return le
	}
	return &LifecycleError{
		Code:       "DATABASE_ERROR",
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Failed to update order",
	}
}

func errForbidden(message string) *LifecycleError {
	return &LifecycleError{Code: "FORBIDDEN", HTTPStatus: http.StatusForbidden, Message: message}
}

func errInvalidState(message string) *LifecycleError {
	return &LifecycleError{Code: "INVALID_STATE", HTTPStatus: http.StatusConflict, Message: message}
}

func errMissingArgument(message string) *LifecycleError {
	return &LifecycleError{Code: "MISSING_ARGUMENT", HTTPStatus: http.StatusBadRequest, Message: message}
}

func errOrderNotFound() *LifecycleError {
	return &LifecycleError{Code: "ORDER_NOT_FOUND", HTTPStatus: http.StatusNotFound, Message: "Order not found"}
}

func errMachineNotFound() *LifecycleError {
	return &LifecycleError{Code: "MACHINE_NOT_FOUND", HTTPStatus: http.StatusNotFound, Message: "Machine not found or not available"}
}

func errNoOfferToAccept() *LifecycleError {
	return &LifecycleError{Code: "NO_OFFER_TO_ACCEPT", HTTPStatus: http.StatusConflict, Message: "No counter offer to accept"}
}
