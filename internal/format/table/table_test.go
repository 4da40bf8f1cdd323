package table

import (
	"reflect"
	"testing"
)

func TestFormatPadsAndAligns(t *testing.T) {
	rows := [][]string{
		{"alpha", "12"},
		{"b", "3456"},
	}
	got := Format(rows, []Alignment{AlignLeft, AlignRight})
	want := []string{
		"alpha    12",
		"b      3456",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatCappedEllipsizesLongCells(t *testing.T) {
	rows := [][]string{
		{"a-very-long-torrent-name", "1"},
		{"short", "2"},
	}
	got := FormatCapped(rows, []Alignment{AlignLeft, AlignRight}, []int{10})
	want := []string{
		"a-very-lo…  1",
		"short       2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatCountsWideGlyphsAsTwoCells(t *testing.T) {
	rows := [][]string{
		{"日本語", "1"},
		{"latin", "2"},
	}
	got := Format(rows, []Alignment{AlignLeft, AlignLeft})
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0] != "日本語  1" {
		t.Fatalf("expected wide row unpadded at width 6, got %q", got[0])
	}
	if got[1] != "latin   2" {
		t.Fatalf("expected latin row padded to width 6, got %q", got[1])
	}
}

func TestFormatEmptyRows(t *testing.T) {
	if got := Format(nil, nil); got != nil {
		t.Fatalf("expected nil for no rows, got %q", got)
	}
}

func TestEllipsize(t *testing.T) {
	if got := Ellipsize("short", 10); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}
	if got := Ellipsize("abcdefgh", 5); got != "abcd…" {
		t.Fatalf("expected truncation with ellipsis, got %q", got)
	}
	if got := Ellipsize("anything", 0); got != "" {
		t.Fatalf("expected empty string at width 0, got %q", got)
	}
}
