// Package auth verifies sessionless request signatures: each request carries
// a hex-encoded secp256k1 public key, a millisecond timestamp, and a hex
// ECDSA signature over the timestamp. There are no sessions or tokens; the
// public key is the caller's identity.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

var (
	ErrBadKey       = errors.New("invalid public key")
	ErrBadTimestamp = errors.New("invalid timestamp")
	ErrBadSignature = errors.New("invalid signature")
	ErrStaleRequest = errors.New("request timestamp outside accepted window")
)

// DefaultWindow is how far a request timestamp may deviate from server time.
const DefaultWindow = 5 * time.Minute

// Verifier checks request signatures and timestamp freshness.
type Verifier struct {
	// Window is the accepted clock skew in either direction. Zero disables
	// the freshness check.
	Window time.Duration
}

// NewVerifier creates a Verifier with the given freshness window.
func NewVerifier(window time.Duration) *Verifier {
	return &Verifier{Window: window}
}

// Verify checks that signature is a valid ECDSA signature by pubKeyHex over
// sha256(timestamp), and that the timestamp is within the freshness window.
func (v *Verifier) Verify(pubKeyHex, timestamp, signatureHex string) error {
	ms, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadTimestamp, err)
	}
	if v.Window > 0 {
		age := time.Since(time.UnixMilli(ms))
		if age > v.Window || age < -v.Window {
			return ErrStaleRequest
		}
	}

	keyBytes, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	pubKey, err := secp256k1.ParsePubKey(keyBytes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadKey, err)
	}

	sigBytes, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	sig, err := parseSignature(sigBytes)
	if err != nil {
		return err
	}

	digest := sha256.Sum256([]byte(timestamp))
	if !sig.Verify(digest[:], pubKey) {
		return ErrBadSignature
	}
	return nil
}

// parseSignature accepts DER-encoded signatures as well as the 64-byte
// compact r||s form clients using raw secp256k1 libraries produce.
func parseSignature(sigBytes []byte) (*ecdsa.Signature, error) {
	if sig, err := ecdsa.ParseDERSignature(sigBytes); err == nil {
		return sig, nil
	}
	if len(sigBytes) != 64 {
		return nil, ErrBadSignature
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sigBytes[:32]); overflow {
		return nil, ErrBadSignature
	}
	if overflow := s.SetByteSlice(sigBytes[32:]); overflow {
		return nil, ErrBadSignature
	}
	return ecdsa.NewSignature(&r, &s), nil
}
