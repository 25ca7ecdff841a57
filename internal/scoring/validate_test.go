package scoring

import (
	"testing"

	"lingua-quiz-service/internal/domain"
)

func TestValidateMultipleChoice(t *testing.T) {
	q := domain.Question{
		Type:           domain.QuestionMultipleChoice,
		Options:        []string{"Hola", "Adios", "Gracias"},
		CorrectAnswers: []string{"Hola"},
	}

	cases := []struct {
		name      string
		submitted []string
		want      bool
	}{
		{"exact match", []string{"Hola"}, true},
		{"case-insensitive match", []string{"hOLA"}, true},
		{"wrong option", []string{"Adios"}, false},
		{"no answers", []string{}, false},
		{"two answers", []string{"Hola", "Adios"}, false},
	}
	for _, tc := range cases {
		if got := Validate(q, tc.submitted); got != tc.want {
			t.Errorf("%s: Validate=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValidateTrueFalse(t *testing.T) {
	q := domain.Question{
		Type:           domain.QuestionTrueFalse,
		CorrectAnswers: []string{"true"},
	}
	if !Validate(q, []string{"TRUE"}) {
		t.Fatalf("expected case-insensitive true to match")
	}
	if Validate(q, []string{"false"}) {
		t.Fatalf("expected false to fail")
	}
}

func TestValidateFillBlankIgnoresPaddingAndCase(t *testing.T) {
	q := domain.Question{
		Type:           domain.QuestionFillBlank,
		CorrectAnswers: []string{"Gracias"},
	}

	for _, submitted := range []string{"Gracias", "  gracias  ", "GRACIAS\t"} {
		if !Validate(q, []string{submitted}) {
			t.Errorf("expected %q to be correct", submitted)
		}
	}
	if Validate(q, []string{"De nada"}) {
		t.Fatalf("expected wrong word to fail")
	}
	if Validate(q, []string{"gracias", "gracias"}) {
		t.Fatalf("expected multiple answers to fail for fill-blank")
	}
}

func TestValidateMatchingIsOrderSensitive(t *testing.T) {
	q := domain.Question{
		Type:           domain.QuestionMatching,
		CorrectAnswers: []string{"Buenos dias", "Buenas noches"},
	}

	if !Validate(q, []string{"Buenos dias", "Buenas noches"}) {
		t.Fatalf("expected in-order sequence to match")
	}
	if Validate(q, []string{"Buenas noches", "Buenos dias"}) {
		t.Fatalf("expected reversed sequence to fail")
	}
	if Validate(q, []string{"buenos dias", "buenas noches"}) {
		t.Fatalf("expected matching to be case-sensitive")
	}
	if Validate(q, []string{"Buenos dias"}) {
		t.Fatalf("expected short sequence to fail")
	}
}

func TestValidateSafeDefaults(t *testing.T) {
	unknown := domain.Question{
		Type:           domain.QuestionType("essay"),
		CorrectAnswers: []string{"anything"},
	}
	if Validate(unknown, []string{"anything"}) {
		t.Fatalf("expected unrecognized type to fail validation")
	}

	noAnswers := domain.Question{
		Type: domain.QuestionMultipleChoice,
	}
	if Validate(noAnswers, []string{"Hola"}) {
		t.Fatalf("expected question without correct answers to never be correct")
	}
}
