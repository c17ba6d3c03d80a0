// Package errors turns handler failures into JSON responses.
//
// Client errors carry their apperr message. Server errors are logged with a
// reference id that is also returned to the caller, so a report can be
// matched to the log line.
package errors

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/auth"
	"go.uber.org/zap"
)

// ErrorLogger writes error responses and logs them.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

type serverErrorBody struct {
	Error string `json:"error"`
	Ref   string `json:"ref"`
}

// LogServerError logs err at Error level and writes a 500 carrying userMsg
// and a fresh reference id.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	ref := uuid.NewString()
	e.Log.Error(msg, append(requestFields(r), zap.String("ref", ref), zap.Error(err))...)
	shared.WriteJSON(w, http.StatusInternalServerError, serverErrorBody{Error: userMsg, Ref: ref})
}

// LogBadRequest logs at Debug and writes a 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Debug(msg, append(requestFields(r), zap.Error(err))...)
	shared.WriteError(w, http.StatusBadRequest, userMsg)
}

// Respond maps err by its apperr kind. Internal errors go through
// LogServerError with a generic message; everything else returns the
// error's own message with the mapped status.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		e.LogServerError(w, r, op, err, "An internal error occurred.")
		return
	}
	e.Log.Debug(op, append(requestFields(r), zap.String("kind", kind.String()), zap.Error(err))...)
	shared.WriteError(w, apperr.Status(kind), apperr.Message(err, http.StatusText(apperr.Status(kind))))
}

func requestFields(r *http.Request) []zap.Field {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if u, ok := auth.CurrentUser(r); ok {
		fields = append(fields, zap.String("user_id", u.ID))
	}
	return fields
}
