package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ai-fitness-coach/internal/apperr"
)

type openConversationRequest struct {
	Title string `json:"title" validate:"max=200"`
	// New forces a fresh conversation instead of resuming the latest one.
	New bool `json:"new"`
}

type clipRecipeRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
}

// openConversation resumes the user's latest conversation or starts one.
func (s *Server) openConversation(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to open conversation"
	ctx := r.Context()
	uid := userID(r)

	var req openConversationRequest
	if err := decode(r, &req, true); err != nil {
		s.fail(w, r, err, generic)
		return
	}
	if err := s.check(&req); err != nil {
		s.fail(w, r, err, generic)
		return
	}

	if !req.New {
		latest, err := s.deps.Chats.Latest(ctx, uid)
		if err != nil {
			s.fail(w, r, apperr.E(apperr.KindDownstream, "server.openConversation", err), generic)
			return
		}
		if latest != nil {
			writeJSON(w, http.StatusOK, latest)
			return
		}
	}

	title := req.Title
	if title == "" {
		title = "New conversation"
	}
	conv, err := s.deps.Chats.Create(ctx, uid, title)
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.openConversation", err), generic)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (s *Server) conversationMessages(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to load messages"
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	owns, err := s.deps.Chats.Owns(ctx, userID(r), id)
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.conversationMessages", err), generic)
		return
	}
	if !owns {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}

	msgs, err := s.deps.Chats.Messages(ctx, id)
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.conversationMessages", err), generic)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) clipRecipe(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to import recipe"

	var req clipRecipeRequest
	if err := s.bind(r, &req); err != nil {
		s.fail(w, r, err, generic)
		return
	}
	recipe, err := s.deps.Clipper.ClipURL(r.Context(), req.URL)
	if err != nil {
		s.fail(w, r, err, generic)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}
