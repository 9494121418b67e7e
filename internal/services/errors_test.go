package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrInference, "segment", "run", "forward pass failed", errors.New("oom"))
	if !errors.Is(err, ErrInference) {
		t.Fatalf("expected error to match ErrInference, got %v", err)
	}
	if got := err.Error(); got != "inference error: segment: run: forward pass failed: oom" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapDefaultsToIO(t *testing.T) {
	err := Wrap(nil, "read", "", "", errors.New("short file"))
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected default marker ErrIO, got %v", err)
	}
}

func TestFatal(t *testing.T) {
	if !Fatal(Wrap(ErrConfiguration, "config", "", "late model missing", nil)) {
		t.Fatal("configuration errors must be fatal")
	}
	if Fatal(Wrap(ErrInputParse, "inputs", "", "no time index", nil)) {
		t.Fatal("input parse errors must not abort the batch")
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]error{
		"configuration": ErrConfiguration,
		"input_parse":   ErrInputParse,
		"io":            ErrIO,
		"inference":     ErrInference,
	}
	for want, marker := range cases {
		if got := Classify(Wrap(marker, "x", "y", "z", nil)); got != want {
			t.Fatalf("expected classification %q, got %q", want, got)
		}
	}
	if got := Classify(errors.New("plain")); got != "unknown" {
		t.Fatalf("expected unknown classification, got %q", got)
	}
}
