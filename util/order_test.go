package util

import (
	"errors"
	"testing"
)

func TestOrderedMap(t *testing.T) {
	m := NewOrderedMap[string, float64]()
	for _, e := range []OrderedMapEntry[string, float64]{
		{"usb_io", 48e6},
		{"fast", 250e6},
		{"usb", 12e6},
	} {
		if err := m.Insert(e.Key, e.Value); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}

	expected := []OrderedMapEntry[string, float64]{
		{Key: "fast", Value: 250e6},
		{Key: "usb", Value: 12e6},
		{Key: "usb_io", Value: 48e6},
	}

	entries := m.Entries()
	keys := m.Keys()
	if len(entries) != len(expected) || m.Len() != len(expected) {
		t.Fatal("unexpected number of entries")
	}
	if len(keys) != len(expected) {
		t.Fatal("unexpected number of keys")
	}
	for i := range entries {
		if entries[i] != expected[i] {
			t.Fatalf("unexpected entry at index %d", i)
		}
		if keys[i] != expected[i].Key {
			t.Fatalf("unexpected key at index %d", i)
		}
	}
}

func TestOrderedMapFrom(t *testing.T) {
	r := map[int]string{-4: "wow", -5: "this", 10: "aint", 3: "gonna", 12: "fail"}
	m := NewOrderedMapFrom(r)
	if err := m.Insert(9, "wanna"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected := []int{-5, -4, 3, 9, 10, 12}
	keys := m.Keys()
	if len(keys) != len(expected) {
		t.Fatal("unexpected number of keys")
	}
	for i := range keys {
		if keys[i] != expected[i] {
			t.Fatalf("unexpected key at index %d", i)
		}
	}
}

func TestOverridesForbidden(t *testing.T) {
	m := NewOrderedMap[string, int]()
	if err := m.Insert("sync", 1); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	err := m.Insert("sync", 2)
	var dup DuplicateKeyError[string]
	if !errors.As(err, &dup) {
		t.Fatalf("expected a duplicate key error, got %v", err)
	}
	if dup.Key != "sync" {
		t.Fatalf("unexpected key %q", dup.Key)
	}
	if v, _ := m.Lookup("sync"); v != 1 {
		t.Fatal("value was overridden")
	}
}

func TestLookups(t *testing.T) {
	var m OrderedMap[int, string]
	if _, ok := m.Lookup(17); ok {
		t.Fatal("lookup in zero map should have failed")
	}
	m = NewOrderedMapFrom(map[int]string{-4: "wow", 10: "aint"})

	if _, ok := m.Lookup(17); ok {
		t.Fatal("lookup should have failed")
	}

	v, ok := m.Lookup(10)
	if !ok {
		t.Fatal("lookup unexpectedly failed")
	}
	if v != "aint" {
		t.Fatal("unexpected value")
	}
}

func TestSliceOrderedBy(t *testing.T) {
	s := []int{10, 3, 523, 77, -95}
	o := SliceOrderedBy(s, func(v *int) int { return -*v })

	expected := []int{523, 77, 10, 3, -95}
	if len(o) != len(expected) {
		t.Fatal("wrong size")
	}
	for i := range o {
		if o[i] != expected[i] {
			t.Fatalf("wrong element %d", i)
		}
	}
}

func TestOrderedKeys(t *testing.T) {
	keys := OrderedKeys(map[string]bool{"ss": true, "fast": true, "sync": true})
	expected := []string{"fast", "ss", "sync"}
	for i := range expected {
		if keys[i] != expected[i] {
			t.Fatalf("wrong key %d", i)
		}
	}
}
