package response

import (
	"encoding/json"
	"net/http"
	"time"
)

const MSG_INTERNAL_ERROR = "internal error"

var now = time.Now

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse is the body of every non-2xx response. Timestamp is in Unix
// milliseconds.
type errorResponse struct {
	Path      string      `json:"path"`
	Timestamp int64       `json:"timestamp"`
	Message   string      `json:"message"`
	Errors    interface{} `json:"errors,omitempty"`
}

func RenderMessage(rw http.ResponseWriter, msg string, status int) {
	Render(rw, messageResponse{Message: msg}, status)
}

func RenderInternalError(rw http.ResponseWriter, r *http.Request) {
	RenderError(rw, r, MSG_INTERNAL_ERROR, http.StatusInternalServerError)
}

func RenderError(rw http.ResponseWriter, r *http.Request, msg string, status int) {
	RenderFieldErrors(rw, r, msg, nil, status)
}

// RenderFieldErrors renders an error with details keyed by request field,
// e.g. validation.Errors.
func RenderFieldErrors(rw http.ResponseWriter, r *http.Request, msg string, errors interface{}, status int) {
	Render(rw, errorResponse{
		Path:      r.URL.RequestURI(),
		Timestamp: now().UnixMilli(),
		Message:   msg,
		Errors:    errors,
	}, status)
}

func Render(rw http.ResponseWriter, res interface{}, status int) {
	rw.Header().Set("Content-Type", "application/json")

	content, err := json.Marshal(res)
	if err != nil {
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	rw.WriteHeader(status)
	rw.Write(content)
}
