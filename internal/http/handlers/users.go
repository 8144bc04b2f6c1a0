package handlers

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"ngoledger/internal/domain"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registeredUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		a.authError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		a.authError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.logger().Error().Err(err).Msg("hash password failed")
		a.authError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	user := &domain.User{Username: req.Username, PasswordHash: string(hash)}
	if err := a.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			a.authError(w, http.StatusBadRequest, "Username already exists")
			return
		}
		a.logger().Error().Err(err).Str("username", req.Username).Msg("create user failed")
		a.authError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	a.logger().Info().Str("user_id", user.ID).Msg("user registered")
	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    registeredUser{ID: user.ID, Username: user.Username},
	})
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		a.authError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := a.Users.GetByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			a.logger().Error().Err(err).Msg("load user failed")
		}
		a.authError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		a.authError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	key, err := a.newToken()
	if err != nil {
		a.logger().Error().Err(err).Msg("generate token failed")
		a.authError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	token, err := a.Users.TokenFor(r.Context(), user.ID, key)
	if err != nil {
		a.logger().Error().Err(err).Str("user_id", user.ID).Msg("issue token failed")
		a.authError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	result := domain.LoginResult{Token: token, Username: user.Username}
	ngo, err := a.NGOs.FirstByAdmin(r.Context(), user.ID)
	switch {
	case err == nil:
		result.IsNGOAdmin = true
		result.NGOID = &ngo.ID
	case !errors.Is(err, domain.ErrNotFound):
		a.logger().Error().Err(err).Str("user_id", user.ID).Msg("load administered ngo failed")
		a.authError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	a.logger().Debug().Str("user_id", user.ID).Bool("is_ngo_admin", result.IsNGOAdmin).Msg("login")
	a.json(w, http.StatusOK, map[string]any{"success": true, "data": result})
}
