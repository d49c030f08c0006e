package util

import (
	"net/http"

	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// WriteError renders {"error": msg, "success": false} with status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= http.StatusInternalServerError {
		log.Errorf("%s %s: %s", r.Method, r.URL.Path, msg)
	} else {
		log.Debugf("%s %s: %s", r.Method, r.URL.Path, msg)
	}
	render.Status(r, status)
	render.JSON(w, r, &ErrorResponse{Error: msg})
}
