// Package onboarding runs the onboarding quiz: a fixed bank of questions
// answered one step at a time, whose answers end up in the user's profile.
package onboarding

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"ai-fitness-coach/internal/profile"
)

//go:embed questions.yaml
var questionsYAML []byte

// QuestionType controls how an answer is collected and validated.
type QuestionType string

const (
	TypeRadio    QuestionType = "radio"
	TypeCheckbox QuestionType = "checkbox"
	TypeInput    QuestionType = "input"
)

type Question struct {
	ID             string       `yaml:"id" json:"id"`
	Category       string       `yaml:"category" json:"category"`
	Text           string       `yaml:"question" json:"question"`
	Type           QuestionType `yaml:"type" json:"type"`
	Options        []string     `yaml:"options" json:"options,omitempty"`
	AllowSelectAll bool         `yaml:"allow_select_all" json:"allowSelectAll,omitempty"`
	Placeholder    string       `yaml:"placeholder" json:"placeholder,omitempty"`
}

// LoadQuestions parses the built-in question bank.
func LoadQuestions() ([]Question, error) {
	return ParseQuestions(questionsYAML)
}

// ParseQuestions decodes and checks a YAML question bank. Every question
// must map to a profile quiz field.
func ParseQuestions(data []byte) ([]Question, error) {
	var questions []Question
	if err := yaml.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}

	seen := make(map[string]bool, len(questions))
	for i := range questions {
		q := &questions[i]
		if q.Type == "" {
			q.Type = TypeRadio
		}
		switch {
		case q.ID == "":
			return nil, fmt.Errorf("question %d has no id", i)
		case seen[q.ID]:
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		case !profile.IsQuizField(q.ID):
			return nil, fmt.Errorf("question %q does not map to a profile field", q.ID)
		case q.Type != TypeInput && len(q.Options) == 0:
			return nil, fmt.Errorf("question %q has no options", q.ID)
		}
		seen[q.ID] = true
	}
	return questions, nil
}

// validate checks value against the question and returns it in canonical
// form: a string for radio and input questions, a []string for checkboxes.
func (q Question) validate(value any) (any, error) {
	switch q.Type {
	case TypeInput:
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%s: an answer is required", q.ID)
		}
		return strings.TrimSpace(s), nil

	case TypeCheckbox:
		var picked []string
		switch v := value.(type) {
		case []string:
			picked = v
		case []any:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%s: expected a list of options", q.ID)
				}
				picked = append(picked, s)
			}
		default:
			return nil, fmt.Errorf("%s: expected a list of options", q.ID)
		}
		if len(picked) == 0 {
			return nil, fmt.Errorf("%s: select at least one option", q.ID)
		}
		unique := make([]string, 0, len(picked))
		for _, s := range picked {
			if !slices.Contains(q.Options, s) {
				return nil, fmt.Errorf("%s: %q is not an option", q.ID, s)
			}
			if !slices.Contains(unique, s) {
				unique = append(unique, s)
			}
		}
		return unique, nil

	default:
		s, ok := value.(string)
		if !ok || !slices.Contains(q.Options, s) {
			return nil, fmt.Errorf("%s: %v is not an option", q.ID, value)
		}
		return s, nil
	}
}
