package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"messagely/internal/service"
)

// @Summary      List users
// @Description  Basic info on all users
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string][]domain.UserSummary
// @Failure      401  {object}  map[string]string
// @Router       /users [get]
func handleListUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := userSvc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	}
}

// @Summary      Get user
// @Description  Full detail of a single user; callers may only fetch themselves
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]domain.User
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{username} [get]
func handleGetUser(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := userSvc.Get(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	}
}

// @Summary      Messages to user
// @Description  Messages received by the user, each with the sender's summary
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string][]domain.UserMessage
// @Failure      403  {object}  map[string]string
// @Router       /users/{username}/to [get]
func handleMessagesTo(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := userSvc.MessagesTo(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
	}
}

// @Summary      Messages from user
// @Description  Messages sent by the user, each with the recipient's summary
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string][]domain.UserMessage
// @Failure      403  {object}  map[string]string
// @Router       /users/{username}/from [get]
func handleMessagesFrom(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := userSvc.MessagesFrom(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
	}
}
