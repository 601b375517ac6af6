package schema

import "testing"

type fakeRecord struct {
	Code string
	Name string
}

func TestValidateRejectsEmptyPropertySet(t *testing.T) {
	s := Schema[fakeRecord]{}
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() = nil, want EmptyPropertySetError")
	}
}

func TestValidateRejectsNegativeWeight(t *testing.T) {
	s := Schema[fakeRecord]{
		Properties: []Property[fakeRecord]{
			{Name: "code", Get: func(r fakeRecord) string { return r.Code }, Weight: -1},
		},
	}
	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want NonPositiveWeightError")
	}
	var weightErr *NonPositiveWeightError
	if _, ok := err.(*NonPositiveWeightError); !ok {
		t.Fatalf("Validate() = %T(%v), want %T", err, err, weightErr)
	}
}

func TestValidateAcceptsZeroWeight(t *testing.T) {
	s := Schema[fakeRecord]{
		Properties: []Property[fakeRecord]{
			{Name: "code", Get: func(r fakeRecord) string { return r.Code }, Weight: 0},
		},
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestTotalWeight(t *testing.T) {
	s := Schema[fakeRecord]{
		Properties: []Property[fakeRecord]{
			{Name: "code", Weight: 2},
			{Name: "name", Weight: 3},
		},
	}
	if got := s.TotalWeight(); got != 5 {
		t.Errorf("TotalWeight() = %v, want 5", got)
	}
}

func TestEffectiveScalingDefaultsToOne(t *testing.T) {
	s := Schema[fakeRecord]{}
	if got := s.EffectiveScaling(); got != 1.0 {
		t.Errorf("EffectiveScaling() = %v, want 1.0", got)
	}
}

func TestEffectiveScalingHonorsExplicitValue(t *testing.T) {
	s := Schema[fakeRecord]{Scaling: 2.5}
	if got := s.EffectiveScaling(); got != 2.5 {
		t.Errorf("EffectiveScaling() = %v, want 2.5", got)
	}
}

func TestLabelFallsBackToTypeName(t *testing.T) {
	s := Schema[fakeRecord]{}
	if got := s.Label("fakeRecord"); got != "fakerecord" {
		t.Errorf("Label() = %q, want %q", got, "fakerecord")
	}
}

func TestLabelHonorsContentLabel(t *testing.T) {
	s := Schema[fakeRecord]{ContentLabel: "custom"}
	if got := s.Label("fakeRecord"); got != "custom" {
		t.Errorf("Label() = %q, want %q", got, "custom")
	}
}
