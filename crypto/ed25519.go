/*
Package crypto provides the default signature primitive of the custody
account: ed25519, with the signer identifier being the raw 32 byte public
key and the 64 byte signature split into its R and S halves, matching the
(signer, r, s) shape of an aggregate signature entry.

A deployment that runs on another curve only needs to provide its own
custody.SignatureVerifier, nothing in the account engine depends on this
package.
*/
package crypto

import (
	"github.com/iov-one/custody"
	"golang.org/x/crypto/ed25519"
)

// SignatureHalf is the length of each of the R and S signature
// components.
const SignatureHalf = ed25519.SignatureSize / 2

// PrivateKey is raw ed25519 private key material.
type PrivateKey []byte

var _ Signer = PrivateKey(nil)

// Sign returns the two signature components of this message.
func (p PrivateKey) Sign(message []byte) (r, s []byte, err error) {
	sig := ed25519.Sign(ed25519.PrivateKey(p), message)
	return sig[:SignatureHalf], sig[SignatureHalf:], nil
}

// SignerID returns the signer identifier of the corresponding public key.
func (p PrivateKey) SignerID() custody.SignerID {
	pub := ed25519.PrivateKey(p).Public().(ed25519.PublicKey)
	return custody.SignerID(pub)
}

// Signer is the functionality we use from a private key. No serializing
// to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (r, s []byte, err error)
	SignerID() custody.SignerID
}

// GenPrivKeyEd25519 returns a random new private key.
func GenPrivKeyEd25519() PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return PrivateKey(priv)
}

// PrivKeyEd25519FromSeed will deterministically generate a private key
// from a given seed. Use if you have a strong source of external
// randomness, or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) PrivateKey {
	return PrivateKey(ed25519.NewKeyFromSeed(seed))
}

// Ed25519Verifier implements the signature oracle consumed by the
// account engine.
type Ed25519Verifier struct{}

var _ custody.SignatureVerifier = Ed25519Verifier{}

// Verify returns true iff (r || s) is a valid ed25519 signature of hash
// under the signer's public key. Malformed input never panics, it simply
// does not verify.
func (Ed25519Verifier) Verify(hash []byte, signer custody.SignerID, r, s []byte) bool {
	if len(signer) != ed25519.PublicKeySize {
		return false
	}
	if len(r) != SignatureHalf || len(s) != SignatureHalf {
		return false
	}
	sig := make([]byte, 0, ed25519.SignatureSize)
	sig = append(sig, r...)
	sig = append(sig, s...)
	return ed25519.Verify(ed25519.PublicKey(signer), hash, sig)
}
