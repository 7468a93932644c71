// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"yamdb/internal/confirm"
	"yamdb/internal/mail"
	"yamdb/internal/metrics"
	"yamdb/internal/store"
	"yamdb/internal/token"
)

// CodeSentDetail is the body of a successful SendCode.
const CodeSentDetail = "Your confirmation code was sent to your email"

// Auth groups the sign-in endpoints: request a code by email, exchange
// it for a token pair, and rotate a refresh token.
type Auth struct {
	users  *store.UserStore
	codes  *confirm.Generator
	tokens *token.Manager
	mailer mail.Sender
	from   string
	now    func() time.Time
}

// NewAuth creates the auth controller. Codes are mailed from the from
// address.
func NewAuth(users *store.UserStore, codes *confirm.Generator, tokens *token.Manager, mailer mail.Sender, from string) *Auth {
	return &Auth{
		users:  users,
		codes:  codes,
		tokens: tokens,
		mailer: mailer,
		from:   from,
		now:    time.Now,
	}
}

type sendCodeRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"omitempty,max=150,username"`
}

type tokenRequest struct {
	Email            string `json:"email" validate:"required,email,max=254"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SendCode handles POST /auth/email. The account is created on first
// use. Every call mails the code for the account's current state.
func (a *Auth) SendCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "send code", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, "send code", err)
		return
	}
	email := strings.ToLower(req.Email)

	user, created, err := a.users.UpsertByEmail(r.Context(), email, req.Username)
	if err != nil {
		writeError(w, "send code", err)
		return
	}
	if !user.IsActive {
		writeError(w, "send code", fieldError("email", "User account is disabled."))
		return
	}

	sentAt := a.now()
	if err := a.users.MarkCodeSent(r.Context(), user.ID, sentAt); err != nil {
		writeError(w, "send code", err)
		return
	}
	user.CodeSentAt = &sentAt

	code, err := a.codes.Generate(user)
	if err != nil {
		writeError(w, "send code", err)
		return
	}
	if err := a.mailer.Send(r.Context(), mail.Confirmation(a.from, user.Email, code)); err != nil {
		writeError(w, "send code", err)
		return
	}

	metrics.ConfirmationCodesSent.Inc()
	slog.Info("confirmation code sent", "user_id", user.ID, "new_user", created)
	writeJSON(w, http.StatusOK, map[string]string{"detail": CodeSentDetail})
}

// Token handles POST /auth/token. A code is accepted once.
func (a *Auth) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "issue token", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, "issue token", err)
		return
	}

	user, err := a.users.FindByEmail(r.Context(), strings.ToLower(req.Email))
	if err != nil {
		writeError(w, "issue token", err)
		return
	}
	if user == nil {
		writeError(w, "issue token", errNotFound)
		return
	}
	if !user.IsActive {
		writeError(w, "issue token", fieldError("email", "User account is disabled."))
		return
	}

	switch err := a.codes.Verify(user, req.ConfirmationCode); {
	case errors.Is(err, confirm.ErrInvalidCode):
		writeError(w, "issue token", fieldError("confirmation_code", "Invalid confirmation code."))
		return
	case errors.Is(err, confirm.ErrExpiredCode):
		writeError(w, "issue token", fieldError("confirmation_code", "Confirmation code has expired."))
		return
	case err != nil:
		writeError(w, "issue token", err)
		return
	}

	ok, err := a.users.ConsumeCode(r.Context(), user.ID, user.StateVersion)
	if err != nil {
		writeError(w, "issue token", err)
		return
	}
	if !ok {
		writeError(w, "issue token", fieldError("confirmation_code", "Invalid confirmation code."))
		return
	}

	pair, err := a.tokens.Issue(r.Context(), user.ID)
	if err != nil {
		writeError(w, "issue token", err)
		return
	}
	metrics.TokensIssued.WithLabelValues("code").Inc()
	writeJSON(w, http.StatusOK, tokenResponse{Token: pair.Access, Refresh: pair.Refresh})
}

// Refresh handles POST /auth/token/refresh. The presented refresh token
// is spent and a new pair is returned.
func (a *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "refresh token", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, "refresh token", err)
		return
	}

	userID, err := a.tokens.Rotate(r.Context(), req.Refresh)
	if errors.Is(err, token.ErrInvalid) || errors.Is(err, token.ErrRevoked) {
		writeError(w, "refresh token", errTokenInvalid)
		return
	}
	if err != nil {
		writeError(w, "refresh token", err)
		return
	}

	user, err := a.users.FindByID(r.Context(), userID)
	if err != nil {
		writeError(w, "refresh token", err)
		return
	}
	if user == nil || !user.IsActive {
		writeError(w, "refresh token", errTokenInvalid)
		return
	}

	pair, err := a.tokens.Issue(r.Context(), user.ID)
	if err != nil {
		writeError(w, "refresh token", err)
		return
	}
	metrics.TokensIssued.WithLabelValues("refresh").Inc()
	writeJSON(w, http.StatusOK, refreshResponse{Access: pair.Access, Refresh: pair.Refresh})
}

var errTokenInvalid = &APIError{Status: http.StatusUnauthorized, Detail: "Token is invalid or expired"}
