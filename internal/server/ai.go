package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/chat"
	"ai-fitness-coach/internal/coach"
	"ai-fitness-coach/internal/profile"
)

type generateWorkoutRequest struct {
	Goal       string `json:"goal" validate:"max=200"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Duration   int    `json:"duration" validate:"omitempty,min=5,max=240"`
	Equipment  string `json:"equipment" validate:"max=200"`
}

type generateMealPlanRequest struct {
	TargetCalories     float64 `json:"targetCalories" validate:"omitempty,gt=0,lte=10000"`
	DietaryPreferences string  `json:"dietaryPreferences" validate:"max=500"`
	MealsPerDay        int     `json:"mealsPerDay" validate:"omitempty,min=1,max=8"`
}

type chatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=8000"`
}

type fitnessCoachRequest struct {
	Messages       []chatMessage `json:"messages" validate:"required,min=1,max=100,dive"`
	ConversationID string        `json:"conversationId"`
}

type fitnessCoachResponse struct {
	Content string `json:"content"`
}

type nutritionPlanRequest struct {
	Profile  *profile.Profile `json:"profile"`
	QuizData profile.Answers  `json:"quizData"`
}

// loadProfile returns the stored profile of the user, or nil.
func (s *Server) loadProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := s.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return nil, apperr.E(apperr.KindDownstream, "server.loadProfile", err)
	}
	return p, nil
}

func (s *Server) generateWorkout(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to generate workout plan"

	var req generateWorkoutRequest
	if err := s.bind(r, &req); err != nil {
		s.fail(w, r, err, generic)
		return
	}
	p, err := s.loadProfile(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, err, generic)
		return
	}

	plan, err := s.deps.Coach.GenerateWorkout(r.Context(), p, coach.WorkoutRequest{
		Goal:            req.Goal,
		Difficulty:      req.Difficulty,
		DurationMinutes: req.Duration,
		Equipment:       req.Equipment,
	})
	if err != nil {
		s.fail(w, r, err, generic)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) generateMealPlan(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to generate meal plan"

	var req generateMealPlanRequest
	if err := s.bind(r, &req); err != nil {
		s.fail(w, r, err, generic)
		return
	}
	p, err := s.loadProfile(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, err, generic)
		return
	}

	plan, err := s.deps.Coach.GenerateMealPlan(r.Context(), p, coach.MealPlanRequest{
		TargetCalories:     req.TargetCalories,
		DietaryPreferences: req.DietaryPreferences,
		MealsPerDay:        req.MealsPerDay,
	})
	if err != nil {
		s.fail(w, r, err, generic)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) fitnessCoach(w http.ResponseWriter, r *http.Request) {
	const generic = "Internal server error"
	ctx := r.Context()
	uid := userID(r)

	var req fitnessCoachRequest
	if err := s.bind(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid message format")
		return
	}

	persist := req.ConversationID != "" && req.ConversationID != chat.TempConversationID
	if persist {
		owns, err := s.deps.Chats.Owns(ctx, uid, req.ConversationID)
		if err != nil {
			s.fail(w, r, apperr.E(apperr.KindDownstream, "server.fitnessCoach", err), generic)
			return
		}
		if !owns {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
	}

	p, err := s.loadProfile(ctx, uid)
	if err != nil {
		s.fail(w, r, err, generic)
		return
	}

	messages := make([]coach.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = coach.Message{Role: m.Role, Content: m.Content}
	}
	reply, err := s.deps.Coach.Chat(ctx, p, messages)
	if err != nil {
		s.fail(w, r, err, generic)
		return
	}

	if persist {
		stored := make([]chat.Message, 0, 2)
		if last := lastUserMessage(req.Messages); last != "" {
			stored = append(stored, chat.Message{Role: chat.RoleUser, Content: last})
		}
		stored = append(stored, chat.Message{Role: chat.RoleAssistant, Content: reply})
		if err := s.deps.Chats.AddMessages(ctx, req.ConversationID, stored...); err != nil {
			s.fail(w, r, apperr.E(apperr.KindDownstream, "server.fitnessCoach", err), generic)
			return
		}
	}
	writeJSON(w, http.StatusOK, fitnessCoachResponse{Content: reply})
}

func lastUserMessage(msgs []chatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

func (s *Server) generateNutritionPlan(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to generate nutrition plan"
	ctx := r.Context()
	uid := userID(r)

	var req nutritionPlanRequest
	if err := decode(r, &req, true); err != nil {
		s.fail(w, r, err, generic)
		return
	}

	p := req.Profile
	if p == nil {
		stored, err := s.loadProfile(ctx, uid)
		if err != nil {
			s.fail(w, r, err, generic)
			return
		}
		p = stored
	}
	if p == nil {
		writeError(w, http.StatusBadRequest, "Profile not found")
		return
	}

	plan, err := s.deps.Coach.GenerateNutritionPlan(ctx, p, req.QuizData)
	if err != nil {
		s.fail(w, r, err, generic)
		return
	}
	if err := s.deps.Nutrition.Upsert(ctx, uid, plan); err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.generateNutritionPlan", err), generic)
		return
	}
	s.logger.Info("nutrition plan saved", zap.String("user_id", uid), zap.Int("days", len(plan.WeeklyPlan)))
	writeJSON(w, http.StatusOK, map[string]any{"plan": plan})
}

func (s *Server) getNutritionPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.deps.Nutrition.Get(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.getNutritionPlan", err), "Failed to load nutrition plan")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "Nutrition plan not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": plan})
}
