package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/postlyhq/postly/internal/apperr"
	"github.com/postlyhq/postly/internal/auth"
	"github.com/postlyhq/postly/internal/postly"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (b loginRequest) Validate() *apperr.Error {
	return auth.ValidateLogin(b.Email, b.Password)
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (b registerRequest) Validate() *apperr.Error {
	return auth.ValidateRegistration(b.Email, b.Password, b.ConfirmPassword)
}

func (s *Server) postLogin(w http.ResponseWriter, r *http.Request) error {
	body, aerr := decodeValid[loginRequest](r.Body)
	if aerr != nil {
		return writeJSON(w, httpStatus(aerr), aerr)
	}

	res := s.authEngine.Login(r.Context(), postly.LoginRequest{
		Email:    body.Email,
		Password: body.Password,
	})
	if usr, ok := res.Value(); ok {
		setSession(w, s.secureCookie, s.httpsCookies, sessionState{
			ID:     uuid.NewString(),
			UserID: usr.ID,
		})
	}

	return writeResult(w, res)
}

func (s *Server) postRegister(w http.ResponseWriter, r *http.Request) error {
	body, aerr := decodeValid[registerRequest](r.Body)
	if aerr != nil {
		return writeJSON(w, httpStatus(aerr), aerr)
	}

	res := s.authEngine.Register(r.Context(), postly.RegisterRequest{
		Email:           body.Email,
		Password:        body.Password,
		ConfirmPassword: body.ConfirmPassword,
	})
	if usr, ok := res.Value(); ok {
		setSession(w, s.secureCookie, s.httpsCookies, sessionState{
			ID:     uuid.NewString(),
			UserID: usr.ID,
		})
	}

	return writeResult(w, res)
}

func (s *Server) getLogout(w http.ResponseWriter, r *http.Request) error {
	if err := s.authEngine.Logout(r.Context()); err != nil {
		return err
	}

	// Session clearing is this layer's job, not the engine's.
	setSession(w, s.secureCookie, s.httpsCookies, sessionState{})

	return writeJSON(w, http.StatusOK, struct{}{})
}

// getViewer reports who the device is logged in as, if anyone.
func (s *Server) getViewer(w http.ResponseWriter, r *http.Request) error {
	loggedIn, err := s.authEngine.IsLoggedIn(r.Context())
	if err != nil {
		return apperr.WithDebug(apperr.DatabaseConnection, err.Error())
	}
	if !loggedIn {
		return writeJSON(w, http.StatusOK, struct {
			LoggedIn bool `json:"loggedIn"`
		}{})
	}

	usr, err := s.authEngine.CurrentUser(r.Context())
	if errors.Is(err, postly.ErrNotFound) {
		return writeJSON(w, http.StatusOK, struct {
			LoggedIn bool `json:"loggedIn"`
		}{})
	}
	if err != nil {
		return apperr.WithDebug(apperr.DatabaseConnection, err.Error())
	}

	return writeJSON(w, http.StatusOK, struct {
		LoggedIn bool        `json:"loggedIn"`
		User     postly.User `json:"user"`
	}{LoggedIn: true, User: usr})
}
