package model

import (
	"testing"
)

func TestStringSliceRoundtrip(t *testing.T) {
	s := StringSlice{"v3", "v1", "v2"}

	v, err := s.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out StringSlice
	if err := out.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(out) != 3 || out[0] != "v3" || out[1] != "v1" || out[2] != "v2" {
		t.Fatalf("roundtrip lost order: %v", out)
	}
}

func TestStringSliceEmpty(t *testing.T) {
	v, err := StringSlice{}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != "" {
		t.Fatalf("expected empty string got %v", v)
	}

	var out StringSlice
	if err := out.Scan(""); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty slice got %v", out)
	}

	if err := out.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty slice got %v", out)
	}
}

func TestStringSliceRejectsCommas(t *testing.T) {
	if _, err := (StringSlice{"a,b"}).Value(); err == nil {
		t.Fatal("expected error for element containing a comma")
	}
}
