package utils

import (
	"bytes"
	"testing"
)

func TestTableURL(t *testing.T) {
	got := TableURL("https://menu.example.com/", 7, 12)
	if got != "https://menu.example.com/restaurant/7/table/12" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestTableQRCode(t *testing.T) {
	png, err := TableQRCode("https://menu.example.com", 1, 3)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatal("expected PNG output")
	}
}

func TestGenerateCode(t *testing.T) {
	a, err := GenerateCode(6)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := GenerateCode(6)
	if len(a) != 12 || a == b {
		t.Fatalf("unexpected codes %q %q", a, b)
	}
}
