package search

import (
	"testing"

	"github.com/marmitar/MC426-backend/pkg/apperr"
)

func TestParseLimitDefaultsWhenAbsent(t *testing.T) {
	got, err := ParseLimit("", 25, 100)
	if err != nil {
		t.Fatalf("ParseLimit: %v", err)
	}
	if got != 25 {
		t.Errorf("ParseLimit(\"\") = %d, want 25", got)
	}
}

func TestParseLimitRejectsNonInteger(t *testing.T) {
	if _, err := ParseLimit("cinco", 25, 100); !isBadRequest(err) {
		t.Errorf("ParseLimit(\"cinco\") error = %v, want BadRequest", err)
	}
}

func TestParseLimitRejectsFloat(t *testing.T) {
	if _, err := ParseLimit("10.0", 25, 100); !isBadRequest(err) {
		t.Errorf("ParseLimit(\"10.0\") error = %v, want BadRequest", err)
	}
}

func TestParseLimitRejectsNegative(t *testing.T) {
	if _, err := ParseLimit("-1", 25, 100); !isBadRequest(err) {
		t.Errorf("ParseLimit(\"-1\") error = %v, want BadRequest", err)
	}
}

func TestParseLimitRejectsAboveMax(t *testing.T) {
	if _, err := ParseLimit("1000", 25, 100); !isBadRequest(err) {
		t.Errorf("ParseLimit(\"1000\") error = %v, want BadRequest", err)
	}
}

func TestParseLimitAcceptsZero(t *testing.T) {
	got, err := ParseLimit("0", 25, 100)
	if err != nil {
		t.Fatalf("ParseLimit(\"0\") error = %v, want nil (0 is valid, not a 400)", err)
	}
	if got != 0 {
		t.Errorf("ParseLimit(\"0\") = %d, want 0", got)
	}
}

func isBadRequest(err error) bool {
	return err != nil && apperr.HTTPStatus(err) == 400
}
