package validate_test

import (
	"testing"

	"github.com/ardanlabs/ballot/foundation/validate"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

type model struct {
	Title      string   `json:"title" validate:"required"`
	Candidates []string `json:"candidates" validate:"required,min=2,unique"`
}

func Test_Check(t *testing.T) {
	t.Log("Given the need to validate a model.")
	{
		err := validate.Check(model{Title: "Council", Candidates: []string{"a", "b"}})
		if err != nil {
			t.Fatalf("\t%s\tShould accept a valid model: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a valid model.", success)

		err = validate.Check(model{Candidates: []string{"a", "a"}})
		if !validate.IsFieldErrors(err) {
			t.Fatalf("\t%s\tShould get field errors: %v", failed, err)
		}
		t.Logf("\t%s\tShould get field errors.", success)

		fields := validate.GetFieldErrors(err).Fields()
		if _, exists := fields["title"]; !exists {
			t.Fatalf("\t%s\tShould report the title by its json name: %v", failed, fields)
		}
		if _, exists := fields["candidates"]; !exists {
			t.Fatalf("\t%s\tShould report the duplicate candidates: %v", failed, fields)
		}
		t.Logf("\t%s\tShould report the fields by their json names.", success)
	}
}
