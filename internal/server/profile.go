package server

import (
	"net/http"
	"time"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/onboarding"
	"ai-fitness-coach/internal/profile"
)

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.loadProfile(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, err, "Failed to load profile")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// putProfile replaces the profile document. The id and creation time are
// owned by the server.
func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to save profile"
	ctx := r.Context()
	uid := userID(r)

	var p profile.Profile
	if err := decode(r, &p, false); err != nil {
		s.fail(w, r, err, generic)
		return
	}
	existing, err := s.loadProfile(ctx, uid)
	if err != nil {
		s.fail(w, r, err, generic)
		return
	}

	p.ID = uid
	p.CreatedAt = time.Time{}
	if existing != nil {
		p.CreatedAt = existing.CreatedAt
	}
	if err := s.deps.Profiles.Save(ctx, &p); err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.putProfile", err), generic)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// saveQuizAnswers merges quiz answers into the profile. Only quiz fields are
// accepted.
func (s *Server) saveQuizAnswers(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to save quiz answers"

	var answers profile.Answers
	if err := decode(r, &answers, false); err != nil {
		s.fail(w, r, err, generic)
		return
	}
	if len(answers) == 0 {
		writeError(w, http.StatusBadRequest, "no answers given")
		return
	}
	if _, err := s.deps.Profiles.SaveAnswers(r.Context(), userID(r), answers); err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			err = apperr.E(apperr.KindDownstream, "server.saveQuizAnswers", err)
		}
		s.fail(w, r, err, generic)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) quizQuestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Quiz.Questions())
}

func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	s.writeQuiz(w, r)(s.deps.Quiz.Get(r.Context(), userID(r)))
}

func (s *Server) answerQuiz(w http.ResponseWriter, r *http.Request) {
	var answers profile.Answers
	if err := decode(r, &answers, false); err != nil {
		s.fail(w, r, err, "Failed to save quiz answers")
		return
	}
	s.writeQuiz(w, r)(s.deps.Quiz.Answer(r.Context(), userID(r), answers))
}

func (s *Server) quizNext(w http.ResponseWriter, r *http.Request) {
	s.writeQuiz(w, r)(s.deps.Quiz.Next(r.Context(), userID(r)))
}

func (s *Server) quizBack(w http.ResponseWriter, r *http.Request) {
	s.writeQuiz(w, r)(s.deps.Quiz.Back(r.Context(), userID(r)))
}

func (s *Server) quizReset(w http.ResponseWriter, r *http.Request) {
	s.writeQuiz(w, r)(s.deps.Quiz.Reset(r.Context(), userID(r)))
}

func (s *Server) quizComplete(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Quiz.Complete(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, err, "Failed to save quiz answers")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) writeQuiz(w http.ResponseWriter, r *http.Request) func(onboarding.View, error) {
	return func(v onboarding.View, err error) {
		if err != nil {
			s.fail(w, r, err, "Failed to update quiz")
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}
