// Package response writes JSON responses and maps service errors onto the
// apierror envelope.
package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"motorvault-api/internal/domain"
	"motorvault-api/pkg/apierror"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("response: failed to encode body: %v", err)
	}
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Created writes a 201 response.
func Created(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusCreated, v)
}

// NoContent writes a 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error translates err into an API error response. Domain errors map onto
// their taxonomy codes; anything unrecognized becomes a 500.
func Error(w http.ResponseWriter, err error) {
	apiErr := translate(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	w.Write(apiErr.ToJSON())
}

func translate(err error) *apierror.APIError {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return apierror.Validation(verr.Error(), verr.Fields)
	}
	var serr *domain.StoreError
	if errors.As(err, &serr) {
		return apierror.Store(serr.Error())
	}
	var suberr *domain.SubscriptionError
	if errors.As(err, &suberr) {
		return apierror.Subscription(suberr.Error())
	}
	if errors.Is(err, domain.ErrNotFound) {
		return apierror.NotFound(domain.ErrNotFound.Error())
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return apierror.Unauthorized(domain.ErrUnauthorized.Error())
	}

	log.Printf("response: unclassified error: %v", err)
	return apierror.InternalError("internal server error")
}
