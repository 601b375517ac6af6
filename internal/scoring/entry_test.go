package scoring

import (
	"testing"

	"github.com/marmitar/MC426-backend/internal/schema"
)

type record struct {
	Code string
	Name string
}

func testSchema() schema.Schema[record] {
	return schema.Schema[record]{
		Properties: []schema.Property[record]{
			{Name: "code", Get: func(r record) string { return r.Code }, Weight: 2, Identifier: true},
			{Name: "name", Get: func(r record) string { return r.Name }, Weight: 3},
			{Name: "secret", Get: func(r record) string { return "hidden-" + r.Code }, Weight: 1, Hidden: true},
		},
		Scaling: 1.0,
	}
}

func TestBuildRejectsInvalidSchema(t *testing.T) {
	_, err := Build(record{}, schema.Schema[record]{})
	if err == nil {
		t.Fatal("Build() = nil error, want EmptyPropertySetError")
	}
}

func TestScoreOfExactMatchIsNearZero(t *testing.T) {
	e, err := Build(record{Code: "MC102", Name: "Algoritmos"}, testSchema())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := e.Score("mc102 algoritmos")
	if got > 0.1 {
		t.Errorf("Score(near-exact) = %v, want close to 0", got)
	}
}

func TestScoreOfUnrelatedQueryIsHigh(t *testing.T) {
	e, err := Build(record{Code: "MC102", Name: "Algoritmos"}, testSchema())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := e.Score("zzzzzzzzzzzzzzzzzzzz")
	if got < 0.3 {
		t.Errorf("Score(unrelated) = %v, want higher", got)
	}
}

func TestVisibleFieldsExcludesHidden(t *testing.T) {
	e, err := Build(record{Code: "MC102", Name: "Algoritmos"}, testSchema())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fields := e.VisibleFields()
	if _, ok := fields["secret"]; ok {
		t.Error("VisibleFields() includes hidden field")
	}
	if fields["code"] != "mc102" {
		t.Errorf("VisibleFields()[code] = %q, want normalized %q", fields["code"], "mc102")
	}
}

func TestAllFieldsIncludesHidden(t *testing.T) {
	e, err := Build(record{Code: "MC102", Name: "Algoritmos"}, testSchema())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fields := e.AllFields()
	if _, ok := fields["secret"]; !ok {
		t.Error("AllFields() missing hidden field")
	}
}
