package onboarding

import (
	"maps"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/profile"
)

// State is everything needed to resume a quiz: the current step and the
// answers given so far. Step == number of questions means finished.
type State struct {
	Step    int             `json:"step"`
	Answers profile.Answers `json:"answers"`
}

// Quiz is the single source of truth for onboarding progress.
type Quiz struct {
	questions []Question
	index     map[string]int
	state     State
}

// NewQuiz starts a quiz at the first question.
func NewQuiz(questions []Question) *Quiz {
	return Restore(questions, State{})
}

// Restore resumes a quiz from a saved state. Out of range steps are clamped
// and answers to unknown questions are dropped.
func Restore(questions []Question, s State) *Quiz {
	q := &Quiz{
		questions: questions,
		index:     make(map[string]int, len(questions)),
	}
	for i, question := range questions {
		q.index[question.ID] = i
	}

	q.state.Step = min(max(s.Step, 0), len(questions))
	q.state.Answers = profile.Answers{}
	for id, v := range s.Answers {
		if _, ok := q.index[id]; ok {
			q.state.Answers[id] = v
		}
	}
	return q
}

// State returns a copy of the quiz state.
func (q *Quiz) State() State {
	return State{Step: q.state.Step, Answers: maps.Clone(q.state.Answers)}
}

// Questions returns the question bank the quiz runs over.
func (q *Quiz) Questions() []Question {
	return q.questions
}

// Current returns the question at the current step. ok is false once the
// quiz is finished.
func (q *Quiz) Current() (Question, bool) {
	if q.Completed() {
		return Question{}, false
	}
	return q.questions[q.state.Step], true
}

// Answer validates and records the answer to question id. Any question may
// be answered, not only the current one.
func (q *Quiz) Answer(id string, value any) error {
	const op = "onboarding.Answer"

	i, ok := q.index[id]
	if !ok {
		return apperr.Errorf(apperr.KindValidation, op, "unknown question %q", id)
	}
	canonical, err := q.questions[i].validate(value)
	if err != nil {
		return apperr.E(apperr.KindValidation, op, err)
	}
	q.state.Answers[id] = canonical
	return nil
}

// Next advances past the current question, which must be answered.
func (q *Quiz) Next() error {
	const op = "onboarding.Next"

	current, ok := q.Current()
	if !ok {
		return apperr.Errorf(apperr.KindValidation, op, "quiz is already completed")
	}
	if _, answered := q.state.Answers[current.ID]; !answered {
		return apperr.Errorf(apperr.KindValidation, op, "question %q is not answered", current.ID)
	}
	q.state.Step++
	return nil
}

// Back returns to the previous question. It is a no-op on the first one.
func (q *Quiz) Back() {
	if q.state.Step > 0 {
		q.state.Step--
	}
}

// Reset clears every answer and returns to the first question.
func (q *Quiz) Reset() {
	q.state = State{Answers: profile.Answers{}}
}

// Progress is the share of steps completed, from 0 to 100.
func (q *Quiz) Progress() int {
	if len(q.questions) == 0 {
		return 100
	}
	return q.state.Step * 100 / len(q.questions)
}

// Completed reports whether every step has been passed.
func (q *Quiz) Completed() bool {
	return q.state.Step >= len(q.questions)
}
