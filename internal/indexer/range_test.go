package indexer

import (
	"reflect"
	"testing"
)

func TestSplitSpans(t *testing.T) {
	got, err := splitSpans(100, 105, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []span{
		{from: 100, to: 101},
		{from: 102, to: 103},
		{from: 104, to: 105},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("spans mismatch: %+v != %+v", got, want)
	}
}

func TestSplitSpansUnevenTail(t *testing.T) {
	got, err := splitSpans(0, 4, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []span{{from: 0, to: 2}, {from: 3, to: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("spans mismatch: %+v != %+v", got, want)
	}
}

func TestSplitSpansSingleBlock(t *testing.T) {
	got, err := splitSpans(5, 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []span{{from: 5, to: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("spans mismatch: %+v != %+v", got, want)
	}
}

func TestSplitSpansInvalid(t *testing.T) {
	if _, err := splitSpans(10, 9, 1); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if _, err := splitSpans(1, 10, 0); err == nil {
		t.Fatalf("expected error for zero step")
	}
}
