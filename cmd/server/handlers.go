package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/socialmembrane/authsvc/pkg/auth"
	"github.com/socialmembrane/authsvc/pkg/otp"
)

type authHandler struct {
	svc *auth.Service
	log *slog.Logger
}

func (h *authHandler) routes(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/request-otp", h.requestOTP)
	r.Post("/auth/resend-otp", h.resendOTP)
	r.Post("/auth/verify-otp", h.verifyOTP)
	r.Post("/auth/login", h.login)
	r.Post("/auth/refresh-token", h.refresh)
	r.Post("/auth/logout", h.logout)
	r.Get("/auth/google/login", h.googleLogin)
	r.Get("/auth/google/callback", h.googleCallback)
	r.Get("/auth/me", h.me)
}

type userPayload struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type authResultPayload struct {
	User   userPayload   `json:"user"`
	Tokens *tokenPayload `json:"tokens,omitempty"`
}

func toUserPayload(u *auth.User) userPayload {
	return userPayload{
		ID:         u.ID.String(),
		Email:      u.Email,
		FullName:   u.FullName,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

func toAuthResultPayload(res *auth.AuthResult) authResultPayload {
	payload := authResultPayload{User: toUserPayload(res.User)}
	if res.Tokens != nil {
		payload.Tokens = &tokenPayload{
			AccessToken:  res.Tokens.AccessToken,
			RefreshToken: res.Tokens.RefreshToken,
			TokenType:    "bearer",
			ExpiresIn:    res.Tokens.ExpiresIn,
		}
	}
	return payload
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), auth.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserPayload(user))
}

func (h *authHandler) requestOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email"`
		Purpose string `json:"purpose"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.svc.RequestOTP(r.Context(), auth.RequestOTPParams{
		Email:     req.Email,
		Purpose:   otp.Purpose(req.Purpose),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	// Same body whether or not the account exists.
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "if the account exists, a code has been sent",
	})
}

func (h *authHandler) resendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email"`
		Purpose string `json:"purpose"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.svc.ResendOTP(r.Context(), auth.RequestOTPParams{
		Email:     req.Email,
		Purpose:   otp.Purpose(req.Purpose),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "if the account exists, a code has been sent",
	})
}

func (h *authHandler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email"`
		Code    string `json:"code"`
		Purpose string `json:"purpose"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.svc.VerifyOTP(r.Context(), auth.VerifyOTPParams{
		Email:   req.Email,
		Code:    req.Code,
		Purpose: otp.Purpose(req.Purpose),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResultPayload(res))
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), auth.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResultPayload(res))
}

func (h *authHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	access, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPayload{
		AccessToken: access,
		TokenType:   "bearer",
	})
}

func (h *authHandler) logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *authHandler) googleLogin(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.GetAuthURL(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *authHandler) googleCallback(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.HandleOAuthCallback(r.Context(), auth.OAuthCallbackParams{
		Code:          r.URL.Query().Get("code"),
		State:         r.URL.Query().Get("state"),
		ProviderError: r.URL.Query().Get("error"),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResultPayload(res))
}

func (h *authHandler) me(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	user, err := h.svc.Me(r.Context(), token)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(user))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
