package main

import "testing"

// TestFlagDefaults verifies the defaults match the recording tools'
// conventions: 10 fps, CRF 23, image mode.
func TestFlagDefaults(t *testing.T) {
	if *frameRate != 10 {
		t.Errorf("frame-rate default = %d, want 10", *frameRate)
	}
	if *qualityFactor != 23 {
		t.Errorf("quality-factor default = %d, want 23", *qualityFactor)
	}
	if *pointCloud {
		t.Error("point-cloud default = true, want false")
	}
	if *showGrid {
		t.Error("show-grid default = true, want false")
	}
	if *failSoft {
		t.Error("fail-soft default = true, want false")
	}
	if *gridSeparation != 5 {
		t.Errorf("grid-separation default = %v, want 5", *gridSeparation)
	}
}

func TestStringListAccumulates(t *testing.T) {
	var l stringList
	if err := l.Set("fr01"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := l.Set("fr02"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := l.String(); got != "fr01,fr02" {
		t.Errorf("String() = %q, want %q", got, "fr01,fr02")
	}
}
