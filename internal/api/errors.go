package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/marginaliaapp/marginalia-server/internal/errors"
	"github.com/marginaliaapp/marginalia-server/internal/store"
)

// APIError is the error body returned to clients.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.Status
}

// RegisterErrorHandler installs a custom error mapper so domain errors
// surface with their proper status codes and everything else becomes an
// opaque 500 without leaking internals.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if domainerrors.As(err, &domainErr) {
				return &APIError{
					Status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}

			var storeErr *store.Error
			if domainerrors.As(err, &storeErr) {
				if storeErr.HTTPCode() == http.StatusNotFound {
					return &APIError{
						Status:  http.StatusNotFound,
						Code:    string(domainerrors.CodeNotFound),
						Message: storeErr.Message,
					}
				}
				return &APIError{
					Status:  http.StatusInternalServerError,
					Code:    string(domainerrors.CodeStorage),
					Message: "a storage error occurred",
				}
			}
		}

		if status >= http.StatusInternalServerError {
			return &APIError{
				Status:  status,
				Code:    string(domainerrors.CodeInternal),
				Message: "an internal error occurred",
			}
		}

		details := make(map[string]string)
		for _, err := range errs {
			if converted, ok := err.(huma.ErrorDetailer); ok {
				detail := converted.ErrorDetail()
				if detail.Location != "" {
					details[detail.Location] = detail.Message
				}
			}
		}
		apiErr := &APIError{
			Status:  status,
			Code:    string(domainerrors.CodeValidation),
			Message: message,
		}
		if len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}
