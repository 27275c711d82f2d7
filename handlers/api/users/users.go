package users

import (
	"encoding/json"
	"net/http"
	"time"

	"canvas-earth/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	RegisterUserRequest struct {
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatarUrl"`
	}
)

// HandleRegister creates a directory entry that canvas objects can reference
// as their owner.
func HandleRegister(store core.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Login == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "login is required"})
			return
		}

		user, err := store.SaveUser(r.Context(), &core.User{
			Login:     req.Login,
			Name:      req.Name,
			AvatarURL: req.AvatarURL,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			logrus.WithError(err).WithField("login", req.Login).Error("Failed to register user")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to register user"})
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, user)
	}
}

// HandleGet returns a directory entry by id.
func HandleGet(store core.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		user, err := store.GetUser(r.Context(), id)
		if err != nil {
			if core.IsNotFound(err) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, map[string]string{"error": err.Error()})
				return
			}
			logrus.WithError(err).WithField("user_id", id).Error("Failed to get user")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to get user"})
			return
		}
		render.JSON(w, r, user)
	}
}
