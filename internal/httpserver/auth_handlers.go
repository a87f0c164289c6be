package httpserver

import (
	"encoding/json"
	"net/http"

	"messagely/internal/domain"
	"messagely/internal/service"
)

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// @Summary      Register a new user
// @Description  Register a new user and return a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body registerRequest true "Register input"
// @Success      201  {object}  tokenResponse
// @Failure      400  {object}  map[string]string
// @Router       /register [post]
func handleRegister(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, domain.ErrInvalidInput)
			return
		}

		resp, err := authSvc.Register(r.Context(), service.RegisterInput{
			Username:  req.Username,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tokenResponse{Token: resp.Token})
	}
}

// @Summary      Login
// @Description  Login with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body loginRequest true "Login input"
// @Success      200  {object}  tokenResponse
// @Failure      400  {object}  map[string]string
// @Router       /login [post]
func handleLogin(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, domain.ErrInvalidInput)
			return
		}

		resp, err := authSvc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{Token: resp.Token})
	}
}
