package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/socialmembrane/authsvc/pkg/auth"
	"github.com/socialmembrane/authsvc/pkg/logger"
	"github.com/socialmembrane/authsvc/pkg/validator"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the auth error taxonomy onto HTTP statuses. Messages
// stay generic; whatever detail exists was already logged server-side.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var rateLimited *auth.RateLimitedError
	if errors.As(err, &rateLimited) {
		seconds := int(math.Ceil(rateLimited.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error: "too many attempts, please try again later",
		})
		return
	}

	var upstream *auth.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Cause {
		case auth.UpstreamBadRequest:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "authentication with provider failed"})
		case auth.UpstreamProviderOutage:
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "provider temporarily unavailable"})
		default:
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "could not reach provider"})
		}
		return
	}

	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		resp := errorResponse{Error: "invalid input"}
		if ve := validator.ExtractValidationErrors(err); len(ve) > 0 {
			resp.Details = make(map[string]string, len(ve))
			for _, fieldErr := range ve {
				resp.Details[fieldErr.Field] = fieldErr.Message
			}
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, auth.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, auth.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "account access denied"})
	case errors.Is(err, auth.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "request could not be completed"})
	case errors.Is(err, auth.ErrOAuthNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "oauth sign-in is not available"})
	default:
		log.Error("unhandled error in handler", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
