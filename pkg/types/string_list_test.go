package types

import "testing"

func TestStringListValue(t *testing.T) {
	v, err := StringList{"new-arrival", "discount"}.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != `["new-arrival","discount"]` {
		t.Fatalf("unexpected value %v", v)
	}

	empty, err := StringList(nil).Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty != "[]" {
		t.Fatalf("expected nil list to encode as [], got %v", empty)
	}
}

func TestStringListScan(t *testing.T) {
	var l StringList
	if err := l.Scan([]byte(`["red","blue"]`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if len(l) != 2 || l[0] != "red" || l[1] != "blue" {
		t.Fatalf("unexpected list %v", l)
	}

	if err := l.Scan(`[]`); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if len(l) != 0 {
		t.Fatalf("expected empty list, got %v", l)
	}

	if err := l.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if l != nil {
		t.Fatalf("expected nil list after nil scan, got %v", l)
	}

	if err := l.Scan(42); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}
