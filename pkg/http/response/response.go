package response

import (
	"encoding/json"
	"net/http"

	"github.com/nodewatch/nodewatch/pkg/errors"
)

type Response struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Handler is a custom type for http handlers that can return errors
type Handler func(w http.ResponseWriter, r *http.Request) error

// Middleware converts our custom handler to standard http.HandlerFunc
func Middleware(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err != nil {
			WriteError(w, err)
			return
		}
	}
}

// WriteJSON writes a successful JSON response wrapped in the envelope.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

// WriteError writes an error response, mapping the AppError's Type to an
// HTTP status code.
func WriteError(w http.ResponseWriter, err error) {
	var resp Response
	var statusCode int

	switch e := err.(type) {
	case *errors.AppError:
		resp = Response{
			Success: false,
			Error: &ErrorResponse{
				Type:    string(e.Type),
				Message: e.Message,
				Details: e.Details,
			},
		}

		switch e.Type {
		case errors.ValidationError:
			statusCode = http.StatusBadRequest
		case errors.NotFoundError:
			statusCode = http.StatusNotFound
		case errors.ConfigWriteError:
			statusCode = http.StatusInternalServerError
		case errors.ConfigParseError:
			statusCode = http.StatusInternalServerError
		case errors.DiscoveryError:
			statusCode = http.StatusNotFound
		default:
			statusCode = http.StatusInternalServerError
		}
	default:
		resp = Response{
			Success: false,
			Error: &ErrorResponse{
				Type:    string(errors.InternalError),
				Message: "an unexpected error occurred",
			},
		}
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}
