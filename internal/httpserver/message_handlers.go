package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"messagely/internal/domain"
	"messagely/internal/service"
)

type messageCreateRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// createdMessage is the flat shape returned by POST /messages.
type createdMessage struct {
	ID           int64     `json:"id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sent_at"`
}

type readReceipt struct {
	ID     int64     `json:"id"`
	ReadAt time.Time `json:"read_at"`
}

func messageID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}

// @Summary      Get message
// @Description  Message detail with both party summaries; only the sender or recipient may fetch it
// @Tags         messages
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]domain.Message
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages/{id} [get]
func handleGetMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		id, err := messageID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		msg, err := msgSvc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if msg.FromUser.Username != currentUser.Username && msg.ToUser.Username != currentUser.Username {
			writeError(w, domain.ErrForbidden)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": msg})
	}
}

// @Summary      Send message
// @Description  Create a message from the authenticated user
// @Tags         messages
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body messageCreateRequest true "Message input"
// @Success      201  {object}  map[string]createdMessage
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages [post]
func handleCreateMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		var req messageCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, domain.ErrInvalidInput)
			return
		}

		// Sender always comes from the token, never the body.
		msg, err := msgSvc.Send(r.Context(), currentUser.Username, req.ToUsername, req.Body)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"message": createdMessage{
			ID:           msg.ID,
			FromUsername: msg.FromUser.Username,
			ToUsername:   msg.ToUser.Username,
			Body:         msg.Body,
			SentAt:       msg.SentAt,
		}})
	}
}

// @Summary      Mark message read
// @Description  Set the read timestamp; only the recipient may do this
// @Tags         messages
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]readReceipt
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages/{id}/read [post]
func handleMarkRead(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		id, err := messageID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		msg, err := msgSvc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if msg.ToUser.Username != currentUser.Username {
			writeError(w, domain.ErrForbidden)
			return
		}

		readAt, err := msgSvc.MarkRead(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": readReceipt{ID: id, ReadAt: readAt}})
	}
}
