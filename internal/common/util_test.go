package common

import (
	"encoding/hex"
	"errors"
	"testing"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n*2 {
		t.Fatalf("expected hex length %d, got %d", n*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("string is not valid hex: %v", err)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestTypedErrors(t *testing.T) {
	var verr *ValidationError
	if !errors.As(NewValidationError(MsgInvalidEmail), &verr) || verr.Message != MsgInvalidEmail {
		t.Fatalf("validation error not matched: %v", verr)
	}

	cerr := &ConflictError{Message: MsgEmailExists, Err: ErrEmailExists}
	if !errors.Is(cerr, ErrEmailExists) {
		t.Fatalf("conflict error must unwrap to its cause")
	}
	if cerr.Error() != MsgEmailExists {
		t.Fatalf("unexpected message %q", cerr.Error())
	}

	var nf *NotFoundError
	if !errors.As(NewNotFoundError("missing"), &nf) || nf.Message != "missing" {
		t.Fatalf("not found error not matched: %v", nf)
	}
}
