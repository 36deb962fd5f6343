package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/postlyhq/postly/internal/apperr"
	"github.com/postlyhq/postly/internal/postly"
	"github.com/postlyhq/postly/logger"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("error encoding json response: %s", err)
	}

	return nil
}

// validator is a surface that can validate itself and return an error
// if something is wrong.
type validator interface {
	Validate() *apperr.Error
}

// decodeValid decodes a request and then validates it.
func decodeValid[V validator](r io.Reader) (V, *apperr.Error) {
	var v V
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return v, apperr.Custom("REQ_001", "Malformed request.", err.Error())
	}
	if err := v.Validate(); err != nil {
		return v, err
	}

	return v, nil
}

// httpStatus maps a catalog code onto a response status.
func httpStatus(e *apperr.Error) int {
	switch e.Code {
	case apperr.UserNotFound.Code, apperr.InvalidPassword.Code:
		return http.StatusUnauthorized
	case apperr.EmailAlreadyRegistered.Code:
		return http.StatusConflict
	case apperr.NetworkUnavailable.Code:
		return http.StatusServiceUnavailable
	}

	switch {
	case strings.HasPrefix(e.Code, "VAL_"), e.Code == "REQ_001":
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(e.Code, "HTTP_"), e.Code == "API_001":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeResult renders an engine outcome: the success value under "data", or
// the error's JSON transport under its mapped status.
func writeResult[T any](w http.ResponseWriter, res postly.Result[T]) error {
	if err := res.Err(); err != nil {
		return writeJSON(w, httpStatus(err), err)
	}

	value, ok := res.Value()
	if !ok {
		// Idle/Loading never normally reaches a response writer.
		return writeJSON(w, http.StatusAccepted, struct{}{})
	}

	return writeJSON(w, http.StatusOK, struct {
		Data T `json:"data"`
	}{Data: value})
}

// HandlerFuncE is a modified type of [http.HandlerFunc] that returns an error.
type HandlerFuncE func(w http.ResponseWriter, r *http.Request) error

func (f HandlerFuncE) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}

	// Either it's already a catalog error, or coerce it to one.
	appErr := &apperr.Error{}
	if !errors.As(err, &appErr) {
		slog.Error("uncataloged handler error", "err", err)
		appErr = apperr.WithDebug(apperr.Unknown, err.Error())
	}

	if err := writeJSON(w, httpStatus(appErr), appErr); err != nil {
		slog.Error("error writing response", "error", err)
	}
}

// errRouter is a newtype around a mux router that allows attaching handlers
// that return errors.
type errRouter struct {
	*mux.Router
}

func (r errRouter) HandleFuncE(path string, f HandlerFuncE) *mux.Route {
	return r.Handle(path, f)
}

func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Downstream records name the request they belong to.
		r = r.WithContext(logger.Ctx(r.Context(),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		))

		writer := &respCodeWriter{ResponseWriter: w}
		next.ServeHTTP(writer, r)

		slog.Info("request completed",
			"method", r.Method,
			"url", r.URL.String(),
			"duration", time.Since(start),
			"status_code", writer.code,
		)
	})
}

// To trap the response status code for logging later.
type respCodeWriter struct {
	http.ResponseWriter
	code int
}

func (w *respCodeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
