// Package questionnaire holds the onboarding questions and turns raw form
// input into ordered, validated answers.
package questionnaire

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"yourkitchen/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var questionsYAML []byte

// MealsQuestionID is the question that lists the meal types to plan.
const MealsQuestionID = 4

const (
	msgSelectMany = "Please select at least one option to continue"
	msgSelectOne  = "Please select an option to continue"
	msgEnterText  = "Please enter your answer to continue"
)

// Question is one onboarding question.
type Question struct {
	ID            int      `yaml:"id" json:"id"`
	Text          string   `yaml:"text" json:"text"`
	HelperText    string   `yaml:"helper_text" json:"helperText,omitempty"`
	Placeholder   string   `yaml:"placeholder" json:"placeholder,omitempty"`
	Options       []string `yaml:"options" json:"options,omitempty"`
	AllowMultiple bool     `yaml:"allow_multiple" json:"allowMultiple,omitempty"`
	AllowOther    bool     `yaml:"allow_other" json:"allowOther,omitempty"`
}

// IsText reports whether the question takes free text instead of options.
func (q Question) IsText() bool {
	return len(q.Options) == 0
}

func (q Question) hasOption(v string) bool {
	for _, o := range q.Options {
		if o == v {
			return true
		}
	}
	return false
}

var questions []Question

func init() {
	if err := yaml.Unmarshal(questionsYAML, &questions); err != nil {
		panic(fmt.Sprintf("questionnaire: invalid questions.yaml: %v", err))
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
}

// Questions returns the questionnaire in display order.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// Lookup returns the question with the given id.
func Lookup(id int) (Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// ValidationError carries one message per failing question id.
type ValidationError struct {
	Fields map[int]string
}

func (e *ValidationError) Error() string {
	ids := make([]int, 0, len(e.Fields))
	for id := range e.Fields {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("Q%d: %s", id, e.Fields[id]))
	}
	return "invalid answers: " + strings.Join(parts, "; ")
}

// Validate checks one question's raw values and returns the message to show,
// or "" when the input is acceptable.
func Validate(q Question, values []string) string {
	values = clean(values)

	if q.IsText() {
		if len(values) == 0 {
			return msgEnterText
		}
		return ""
	}

	if len(values) == 0 {
		if q.AllowMultiple {
			return msgSelectMany
		}
		return msgSelectOne
	}
	if !q.AllowMultiple && len(values) > 1 {
		return msgSelectOne
	}
	if !q.AllowOther {
		for _, v := range values {
			if !q.hasOption(v) {
				return msgSelectOne
			}
		}
	}
	return ""
}

// Collect validates raw input for every question and returns the answers
// ordered by question id. Multi-select values are joined with ", ".
func Collect(raw map[int][]string) ([]domain.Answer, error) {
	fields := make(map[int]string)
	answers := make([]domain.Answer, 0, len(questions))

	for _, q := range questions {
		values := clean(raw[q.ID])
		if msg := Validate(q, values); msg != "" {
			fields[q.ID] = msg
			continue
		}
		answers = append(answers, domain.Answer{QuestionID: q.ID, Answer: strings.Join(values, ", ")})
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return answers, nil
}

// RequestedMealTypes returns the meal types picked in the meals question.
func RequestedMealTypes(answers []domain.Answer) []string {
	for _, a := range answers {
		if a.QuestionID == MealsQuestionID {
			return clean(strings.Split(a.Answer, ","))
		}
	}
	return nil
}

// FormatAnswers renders answers as "Q{id}: {answer}" lines, optionally with a
// prefix on each line.
func FormatAnswers(answers []domain.Answer, prefix string) string {
	lines := make([]string, 0, len(answers))
	for _, a := range answers {
		lines = append(lines, fmt.Sprintf("%sQ%d: %s", prefix, a.QuestionID, a.Answer))
	}
	return strings.Join(lines, "\n")
}

func clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// answerValues decodes either a single YAML scalar or a sequence.
type answerValues []string

func (a *answerValues) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*a = answerValues{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*a = list
	return nil
}

// LoadAnswersFile reads raw answers from a YAML file shaped as
//
//	- id: 1
//	  answer: Comfortable with basics
//	- id: 4
//	  answer: [Breakfast, Dinner]
func LoadAnswersFile(path string) (map[int][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}

	var entries []struct {
		ID     int          `yaml:"id"`
		Answer answerValues `yaml:"answer"`
	}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse answers file: %w", err)
	}

	raw := make(map[int][]string, len(entries))
	for _, e := range entries {
		raw[e.ID] = append(raw[e.ID], e.Answer...)
	}
	return raw, nil
}
