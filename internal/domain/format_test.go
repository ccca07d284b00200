package domain

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
	}{
		{"jpeg", FormatJPEG},
		{"jpg", FormatJPEG},
		{"JPG", FormatJPEG},
		{" png ", FormatPNG},
		{"webp", FormatWEBP},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseFormat(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}

	if _, err := ParseFormat("bmp"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for bmp output, got %v", err)
	}
}

func TestFormatExt(t *testing.T) {
	if got := FormatJPEG.Ext(); got != "jpg" {
		t.Fatalf("expected jpg, got %s", got)
	}
	if got := FormatPNG.Ext(); got != "png" {
		t.Fatalf("expected png, got %s", got)
	}
	if got := FormatWEBP.Ext(); got != "webp" {
		t.Fatalf("expected webp, got %s", got)
	}
}

func TestFormatLossy(t *testing.T) {
	if !FormatJPEG.Lossy() || !FormatWEBP.Lossy() {
		t.Fatal("expected jpeg and webp to be lossy")
	}
	if FormatPNG.Lossy() {
		t.Fatal("expected png to be lossless")
	}
}
