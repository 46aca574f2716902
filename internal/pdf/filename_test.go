package pdf

import "testing"

func TestFilename(t *testing.T) {
	got := Filename("Ali Khan", "64f1c2aa9be77d0012ab12cd")
	want := "quotation-Ali-Khan-AB12CD.pdf"
	if got != want {
		t.Fatalf("Filename = %q, want %q", got, want)
	}
}

func TestFilenameDeterministic(t *testing.T) {
	a := Filename("Sara Ahmed Textiles", "0000ff00aa")
	b := Filename("Sara Ahmed Textiles", "0000ff00aa")
	if a != b {
		t.Fatalf("expected deterministic filename, got %q and %q", a, b)
	}
	if a != "quotation-Sara-Ahmed-Textiles-FF00AA.pdf" {
		t.Fatalf("unexpected filename %q", a)
	}
}

func TestFilenameShortID(t *testing.T) {
	if got := Filename("Ali", "ab1"); got != "quotation-Ali-AB1.pdf" {
		t.Fatalf("unexpected filename %q", got)
	}
}
