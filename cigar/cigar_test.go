package cigar

import (
	"testing"
)

func TestCodes(t *testing.T) {
	for _, op := range []byte{Match, Mismatch, Insertion, Deletion} {
		c, err := Code(op)
		if err != nil {
			t.Fatalf("Code(%c): %v", op, err)
		}

		if Op(c) != op {
			t.Fatalf("Op(Code(%c)) = %c", op, Op(c))
		}
	}

	if c, err := Code('!'); err != nil || c != CodeMismatch {
		t.Fatalf("'!' should be a mismatch: %d %v", c, err)
	}

	if _, err := Code('M'); err != ErrOp {
		t.Fatalf("expected ErrOp, got %v", err)
	}

	if Op(Codes) != 0 {
		t.Fatalf("out of range code should return 0")
	}
}

func TestEncodeDecode(t *testing.T) {
	s := []byte("==XID==")
	codes, err := Encode(s)
	if err != nil {
		t.Fatal(err)
	}

	if string(Decode(codes)) != string(s) {
		t.Fatalf("decode fails: %s", Decode(codes))
	}

	if _, err := Encode([]byte("==Q")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSpan(t *testing.T) {
	read, ref := Span([]byte("==XIID="))
	if read != 6 || ref != 5 {
		t.Fatalf("span: read %d ref %d", read, ref)
	}

	if n := Errors([]byte("==XIID=")); n != 4 {
		t.Fatalf("errors: %d", n)
	}
}

func TestString(t *testing.T) {
	if s := String([]byte("=====XII=D")); s != "5=1X2I1=1D" {
		t.Fatalf("String: %s", s)
	}

	if s := String(nil); s != "" {
		t.Fatalf("String(nil): %q", s)
	}
}
