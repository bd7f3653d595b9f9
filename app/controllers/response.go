package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"studentblog/app/apperr"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// sendJSON writes a successful envelope: {"success": true, <key>: <value>}.
func sendJSON(w http.ResponseWriter, status int, key string, value interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"success": true,
		key:       value,
	})
}

// WriteError translates err into the error envelope and its status code.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	resp := errorResponse{Message: "internal server error"}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Errors = appErr.Fields
		if appErr.Err != nil {
			resp.Error = appErr.Err.Error()
		}
	} else {
		resp.Error = err.Error()
	}

	entry := log.WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
		"kind":   kind.String(),
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("[controllers] request failed")
	} else {
		entry.Debugf("[controllers] request rejected: %v", err)
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("[controllers] failed to encode response")
	}
}
