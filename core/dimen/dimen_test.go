package dimen

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestPointArithmetic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "graide.core")
	defer teardown()
	//
	p := Point{10, 20}
	p.Shift(Point{5, -20})
	if p != (Point{15, 0}) {
		t.Errorf("expected shifted point (15,0), is %v", p)
	}
	if p.IsZero() {
		t.Errorf("expected (15,0) not to be zero")
	}
	if !p.Shift(Point{-15, 0}).IsZero() {
		t.Errorf("expected point shifted back to origin, is %v", p)
	}
	if s := DU(12.5).String(); s != "12.5du" {
		t.Errorf("expected 12.5du, is %s", s)
	}
	if s := (Point{50, -2}).String(); s != "(50du,-2du)" {
		t.Errorf("expected (50du,-2du), is %s", s)
	}
}
