package textnorm

import "testing"

func TestNormalizeFoldsCaseAndDiacritics(t *testing.T) {
	cases := map[string]string{
		"Computação":        "computacao",
		"ALGORITMOS":        "algoritmos",
		"Cálculo Numérico":  "calculo numerico",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeFoldsFullwidthForms(t *testing.T) {
	if got := Normalize("ＡＢＣ"); got != "abc" {
		t.Errorf("Normalize(fullwidth) = %q, want %q", got, "abc")
	}
}

func TestCollapseWhitespaceTrimsAndJoins(t *testing.T) {
	got := CollapseWhitespace("  Algoritmos\n\te   Programação  ")
	want := "Algoritmos e Programação"
	if got != want {
		t.Errorf("CollapseWhitespace = %q, want %q", got, want)
	}
}

func TestPipelineIsIdempotent(t *testing.T) {
	once := Pipeline("  Estruturas  de   Dados  ")
	twice := Pipeline(once)
	if once != twice {
		t.Errorf("Pipeline is not idempotent: %q != %q", once, twice)
	}
}

func TestSanitisePathSegmentProducesSafeName(t *testing.T) {
	got := SanitisePathSegment("disciplines/2021:v2")
	for _, r := range got {
		if !IsASCIIAlnum(r) && r != '_' {
			t.Fatalf("SanitisePathSegment(%q) contains unsafe rune %q", "disciplines/2021:v2", r)
		}
	}
}

func TestSanitisePathSegmentIdempotent(t *testing.T) {
	once := SanitisePathSegment("a/b c")
	twice := SanitisePathSegment(once)
	if once != twice {
		t.Errorf("SanitisePathSegment not idempotent: %q != %q", once, twice)
	}
}
