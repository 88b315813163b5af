package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"autoshop/pkg/domain/model"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Stale bool   `json:"stale,omitempty"`
}

var notFoundErrors = []error{
	model.ErrInvoiceNotFound,
	model.ErrCustomerNotFound,
	model.ErrVehicleNotFound,
	model.ErrProfileNotFound,
	model.ErrShopNotFound,
}

// statusOf maps a domain error to its HTTP status. Unknown errors are 500.
func statusOf(err error) int {
	for _, notFound := range notFoundErrors {
		if errors.Is(err, notFound) {
			return http.StatusNotFound
		}
	}
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, model.ErrCollaborator):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	body := errorBody{Error: err.Error()}

	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		body.Field = validationErr.Field
	}
	body.Stale = errors.Is(err, model.ErrTotalsStale)

	fields := log.Fields{"method": r.Method, "url": r.URL, "status": status}
	if status == http.StatusInternalServerError {
		log.WithFields(fields).WithError(err).Error("request failed")
		body.Error = "internal error"
	} else {
		log.WithFields(fields).WithError(err).Warn("request rejected")
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithField("err", err).Error("write response body")
	}
}

func decodeJSON(r *http.Request, into interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return &model.ValidationError{Field: "body", Reason: "malformed JSON: " + err.Error()}
	}
	return nil
}
