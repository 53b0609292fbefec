// Package bech32 renders binary identifiers in the checksummed,
// human-readable bech32 form, eg. "signer1...". The account core itself
// only deals in raw bytes, this is a presentation concern of config
// files and user interfaces.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/custody/errors"
)

// Encode renders the payload under the given human readable prefix.
func Encode(hrp string, payload []byte) (string, error) {
	if hrp == "" {
		return "", errors.Wrap(errors.ErrEmpty, "human readable part")
	}
	grouped, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(errors.ErrInput, err.Error())
	}
	enc, err := bech32.Encode(hrp, grouped)
	if err != nil {
		return "", errors.Wrap(errors.ErrInput, err.Error())
	}
	return enc, nil
}

// Decode parses a bech32 string back into its prefix and raw payload.
func Decode(enc string) (string, []byte, error) {
	hrp, grouped, err := bech32.Decode(enc)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	payload, err := bech32.ConvertBits(grouped, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return hrp, payload, nil
}
