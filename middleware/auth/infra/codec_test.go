package infra

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"
)

func TestEncodeSegment_NoPaddingURLAlphabet(t *testing.T) {
	seg, err := EncodeSegment(map[string]string{"k": "??>>"})
	if err != nil {
		t.Fatalf("EncodeSegment: %v", err)
	}
	if strings.ContainsAny(seg, "=+/") {
		t.Fatalf("expected base64url without padding, got %q", seg)
	}
}

func TestDecodeSegment_ToleratesPadding(t *testing.T) {
	seg, err := EncodeSegment(map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("EncodeSegment: %v", err)
	}
	padded := seg + strings.Repeat("=", (4-len(seg)%4)%4)

	for _, in := range []string{seg, padded} {
		var out map[string]string
		if err := DecodeSegment(in, &out); err != nil {
			t.Fatalf("DecodeSegment(%q): %v", in, err)
		}
		if out["a"] != "b" {
			t.Fatalf("unexpected decode %v", out)
		}
	}
}

func TestDecodeSegment_RejectsGarbage(t *testing.T) {
	var out map[string]any
	if err := DecodeSegment("***", &out); err == nil {
		t.Fatalf("expected error for invalid base64")
	}
}

func TestSign_HexHMACSHA256(t *testing.T) {
	// RFC 4231 test case 2.
	got := Sign("what do ya want for nothing?", []byte("Jefe"))
	want := "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestSignatureSegment_WrapsHexDigest(t *testing.T) {
	seg := SignatureSegment("a.b", []byte("secret"))
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	if _, err := hex.DecodeString(string(raw)); err != nil || len(raw) != 64 {
		t.Fatalf("expected 64 hex chars inside signature, got %q", raw)
	}
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("secret")
	sig := SignatureSegment("h.p", secret)

	if !VerifySignature("h.p", sig, secret) {
		t.Fatalf("expected valid signature")
	}
	if VerifySignature("h.q", sig, secret) {
		t.Fatalf("expected mismatch for other input")
	}
	if VerifySignature("h.p", sig, []byte("other")) {
		t.Fatalf("expected mismatch for other secret")
	}
}
