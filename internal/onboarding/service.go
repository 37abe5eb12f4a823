package onboarding

import (
	"context"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/profile"
)

// AnswerSaver writes finished quiz answers into a profile.
type AnswerSaver interface {
	SaveAnswers(ctx context.Context, userID string, answers profile.Answers) (*profile.Profile, error)
}

// View is what a client needs to render the quiz.
type View struct {
	State     State     `json:"state"`
	Question  *Question `json:"question,omitempty"`
	Total     int       `json:"total"`
	Progress  int       `json:"progress"`
	Completed bool      `json:"completed"`
}

// Service loads a user's quiz, applies one transition and saves it back.
type Service struct {
	questions []Question
	store     *Store
	profiles  AnswerSaver
}

// NewService creates a new Service.
func NewService(questions []Question, store *Store, profiles AnswerSaver) *Service {
	return &Service{questions: questions, store: store, profiles: profiles}
}

// Questions returns the question bank.
func (s *Service) Questions() []Question {
	return s.questions
}

// Get returns the current quiz of a user.
func (s *Service) Get(ctx context.Context, userID string) (View, error) {
	quiz, err := s.load(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return viewOf(quiz), nil
}

// Answer records several answers at once.
func (s *Service) Answer(ctx context.Context, userID string, answers profile.Answers) (View, error) {
	return s.apply(ctx, userID, func(q *Quiz) error {
		for id, value := range answers {
			if err := q.Answer(id, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) Next(ctx context.Context, userID string) (View, error) {
	return s.apply(ctx, userID, (*Quiz).Next)
}

func (s *Service) Back(ctx context.Context, userID string) (View, error) {
	return s.apply(ctx, userID, func(q *Quiz) error { q.Back(); return nil })
}

func (s *Service) Reset(ctx context.Context, userID string) (View, error) {
	return s.apply(ctx, userID, func(q *Quiz) error { q.Reset(); return nil })
}

// Complete copies the answers of a finished quiz into the profile.
func (s *Service) Complete(ctx context.Context, userID string) (*profile.Profile, error) {
	const op = "onboarding.Complete"

	quiz, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !quiz.Completed() {
		return nil, apperr.Errorf(apperr.KindValidation, op, "quiz is not finished")
	}
	p, err := s.profiles.SaveAnswers(ctx, userID, quiz.State().Answers)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			return nil, apperr.E(apperr.KindDownstream, op, err)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) apply(ctx context.Context, userID string, transition func(*Quiz) error) (View, error) {
	quiz, err := s.load(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if err := transition(quiz); err != nil {
		return View{}, err
	}
	if err := s.store.Save(ctx, userID, quiz.State()); err != nil {
		return View{}, apperr.E(apperr.KindDownstream, "onboarding.save", err)
	}
	return viewOf(quiz), nil
}

func (s *Service) load(ctx context.Context, userID string) (*Quiz, error) {
	state, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, apperr.E(apperr.KindDownstream, "onboarding.load", err)
	}
	return Restore(s.questions, state), nil
}

func viewOf(q *Quiz) View {
	v := View{
		State:     q.State(),
		Total:     len(q.questions),
		Progress:  q.Progress(),
		Completed: q.Completed(),
	}
	if current, ok := q.Current(); ok {
		v.Question = &current
	}
	return v
}
