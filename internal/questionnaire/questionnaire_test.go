package questionnaire

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yourkitchen/internal/domain"
)

func validRaw() map[int][]string {
	raw := make(map[int][]string)
	for _, q := range Questions() {
		if q.IsText() {
			raw[q.ID] = []string{"something"}
			continue
		}
		raw[q.ID] = []string{q.Options[0]}
	}
	return raw
}

func TestQuestionsLoaded(t *testing.T) {
	qs := Questions()
	if len(qs) != 14 {
		t.Fatalf("Expected 14 questions, got %d", len(qs))
	}
	meals, ok := Lookup(MealsQuestionID)
	if !ok {
		t.Fatal("Expected the meals question to exist")
	}
	if !meals.AllowMultiple || len(meals.Options) != 3 {
		t.Errorf("Unexpected meals question %+v", meals)
	}
}

func TestCollectJoinsMultiSelect(t *testing.T) {
	raw := validRaw()
	raw[MealsQuestionID] = []string{"Breakfast", " Dinner "}
	raw[6] = []string{"Filipino", "Peruvian"}

	answers, err := Collect(raw)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(answers) != 14 {
		t.Fatalf("Expected 14 answers, got %d", len(answers))
	}
	for i := 1; i < len(answers); i++ {
		if answers[i-1].QuestionID >= answers[i].QuestionID {
			t.Fatal("Expected answers ordered by question id")
		}
	}
	if answers[3].Answer != "Breakfast, Dinner" {
		t.Errorf("Expected 'Breakfast, Dinner', got %q", answers[3].Answer)
	}
	if answers[5].Answer != "Filipino, Peruvian" {
		t.Errorf("Expected custom cuisine to be allowed, got %q", answers[5].Answer)
	}
}

func TestCollectValidation(t *testing.T) {
	raw := validRaw()
	raw[1] = []string{"Michelin level"}
	raw[2] = []string{"   "}
	delete(raw, MealsQuestionID)
	raw[7] = []string{"Local supermarket", "Mix of both"}

	_, err := Collect(raw)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected a ValidationError, got %v", err)
	}

	want := map[int]string{
		1:               msgSelectOne,
		2:               msgEnterText,
		MealsQuestionID: msgSelectMany,
		7:               msgSelectOne,
	}
	if len(verr.Fields) != len(want) {
		t.Fatalf("Expected %d field errors, got %v", len(want), verr.Fields)
	}
	for id, msg := range want {
		if verr.Fields[id] != msg {
			t.Errorf("Q%d: expected %q, got %q", id, msg, verr.Fields[id])
		}
	}
	if !strings.Contains(err.Error(), "Q2: "+msgEnterText) {
		t.Errorf("Unexpected error text %q", err.Error())
	}
}

func TestRequestedMealTypes(t *testing.T) {
	answers := []domain.Answer{
		{QuestionID: 1, Answer: "Comfortable with basics"},
		{QuestionID: MealsQuestionID, Answer: "Lunch, Dinner"},
	}
	got := RequestedMealTypes(answers)
	if len(got) != 2 || got[0] != "Lunch" || got[1] != "Dinner" {
		t.Errorf("Expected [Lunch Dinner], got %v", got)
	}
	if RequestedMealTypes(nil) != nil {
		t.Error("Expected nil without a meals answer")
	}
}

func TestFormatAnswers(t *testing.T) {
	answers := []domain.Answer{{QuestionID: 1, Answer: "A"}, {QuestionID: 5, Answer: "No nuts"}}
	got := FormatAnswers(answers, "")
	if got != "Q1: A\nQ5: No nuts" {
		t.Errorf("Unexpected format %q", got)
	}
}

func TestLoadAnswersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	content := "- id: 1\n  answer: Comfortable with basics\n- id: 4\n  answer: [Breakfast, Dinner]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	raw, err := LoadAnswersFile(path)
	if err != nil {
		t.Fatalf("LoadAnswersFile failed: %v", err)
	}
	if len(raw[1]) != 1 || raw[1][0] != "Comfortable with basics" {
		t.Errorf("Unexpected scalar answer %v", raw[1])
	}
	if len(raw[4]) != 2 || raw[4][1] != "Dinner" {
		t.Errorf("Unexpected list answer %v", raw[4])
	}
}
