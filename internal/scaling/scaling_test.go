package scaling

import (
	"testing"
)

func TestComputeIdentityAtTrainingResolution(t *testing.T) {
	factors, err := Compute(PixelSize{X: 0.2, Y: 0.2, Z: 2})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if factors.Z != 1.0 || factors.Y != 1.0 || factors.X != 1.0 {
		t.Fatalf("expected identity factors at training resolution, got %s", factors)
	}
}

func TestComputeTransposition(t *testing.T) {
	// The tuple order is (pz/2.0, px/0.2, py/0.2); x and y deliberately
	// swap positions relative to the input declaration order.
	factors, err := Compute(PixelSize{X: 0.4, Y: 0.1, Z: 1})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if factors.Z != 0.5 {
		t.Fatalf("expected z factor 0.5, got %g", factors.Z)
	}
	if factors.Y != 2.0 {
		t.Fatalf("expected second tuple slot px/0.2 = 2.0, got %g", factors.Y)
	}
	if factors.X != 0.5 {
		t.Fatalf("expected third tuple slot py/0.2 = 0.5, got %g", factors.X)
	}
}

func TestComputeRejectsNonPositive(t *testing.T) {
	cases := []PixelSize{
		{X: 0, Y: 0.2, Z: 2},
		{X: 0.2, Y: -0.2, Z: 2},
		{X: 0.2, Y: 0.2, Z: 0},
	}
	for _, px := range cases {
		if _, err := Compute(px); err == nil {
			t.Fatalf("expected error for pixel size %+v", px)
		}
	}
}

func TestParsePixelSize(t *testing.T) {
	px, err := ParsePixelSize("0.2,0.2,2")
	if err != nil {
		t.Fatalf("ParsePixelSize returned error: %v", err)
	}
	if px.X != 0.2 || px.Y != 0.2 || px.Z != 2 {
		t.Fatalf("unexpected pixel size %+v", px)
	}

	if _, err := ParsePixelSize("0.2,0.2"); err == nil {
		t.Fatal("expected error for two-value input")
	}
	if _, err := ParsePixelSize("0.2,abc,2"); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
	if _, err := ParsePixelSize(""); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestScaleFactorsFlag(t *testing.T) {
	factors := ScaleFactors{Z: 0.5, Y: 2, X: 1}
	if got := factors.Flag(); got != "0.5,2,1" {
		t.Fatalf("unexpected flag rendering %q", got)
	}
}
