package handlers

import (
	"encoding/json"
	"errors"
	"freight-order-service/internal/auth"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/services"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Every reply is an envelope: {"success": bool, "message": string?, ...payload}.
type payload map[string]any

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.FromContext(r.Context()).Warn("encode failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func writeOK(w http.ResponseWriter, r *http.Request, msg string, p payload) {
	body := payload{"success": true}
	if msg != "" {
		body["message"] = msg
	}
	for k, v := range p {
		body[k] = v
	}
	writeJSON(w, r, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, payload{"success": false, "message": msg})
}

// writeServiceError maps service errors to status codes. Anything that is
// not a refusal the caller can act on becomes a 500 and is logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, r, http.StatusBadRequest, payload{
			"success": false,
			"message": services.MsgFillAllFields,
			"errors":  ve.Fields,
		})
		return
	}

	var se *services.Error
	if errors.As(err, &se) {
		writeError(w, r, statusFor(se.Kind), se.Message)
		return
	}

	obs.FromContext(r.Context()).Error("request failed",
		zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func statusFor(k services.Kind) int {
	switch k {
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// decodeJSON reads exactly one JSON object from the body into dst.
// An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// pathID parses the {name} path segment as a positive id.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// principal returns the caller, or nil for anonymous requests. Services
// reject nil where a session is required.
func principal(r *http.Request) *auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}
