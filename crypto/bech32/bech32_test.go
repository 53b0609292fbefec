package bech32

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("test-payload")

	enc, err := Encode("signer", payload)
	if err != nil {
		t.Fatalf("cannot encode: %s", err)
	}

	hrp, got, err := Decode(enc)
	if err != nil {
		t.Fatalf("cannot decode: %s", err)
	}
	if hrp != "signer" {
		t.Fatalf("invalid prefix: %q", hrp)
	}
	if !bytes.Equal(payload, got) {
		t.Logf("want %d", payload)
		t.Logf("got  %d", got)
		t.Fatal("invalid decode")
	}
}

func TestEncodeRequiresPrefix(t *testing.T) {
	if _, err := Encode("", []byte("x")); err == nil {
		t.Fatal("want an error for an empty prefix")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := Decode("signer1qqqqqqxx"); err == nil {
		t.Fatal("want a checksum error")
	}
}
