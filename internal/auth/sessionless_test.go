package auth_test

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/msomdec/prof/internal/auth"
)

func signedRequest(t *testing.T, ts string) (pubKey, signature string) {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	digest := sha256.Sum256([]byte(ts))
	sig := ecdsa.Sign(priv, digest[:])
	return hex.EncodeToString(priv.PubKey().SerializeCompressed()), hex.EncodeToString(sig.Serialize())
}

func nowMillis() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func TestVerify_ValidDERSignature(t *testing.T) {
	v := auth.NewVerifier(auth.DefaultWindow)
	ts := nowMillis()
	pubKey, sig := signedRequest(t, ts)

	if err := v.Verify(pubKey, ts, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerify_ValidCompactSignature(t *testing.T) {
	v := auth.NewVerifier(auth.DefaultWindow)
	ts := nowMillis()

	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	digest := sha256.Sum256([]byte(ts))
	// SignCompact prepends a recovery byte; the wire format is just r||s.
	compact := ecdsa.SignCompact(priv, digest[:], true)[1:]

	pubKey := hex.EncodeToString(priv.PubKey().SerializeCompressed())
	if err := v.Verify(pubKey, ts, hex.EncodeToString(compact)); err != nil {
		t.Fatalf("Verify compact: %v", err)
	}
}

func TestVerify_WrongMessage(t *testing.T) {
	v := auth.NewVerifier(auth.DefaultWindow)
	pubKey, sig := signedRequest(t, nowMillis())

	other := strconv.FormatInt(time.Now().UnixMilli()+1, 10)
	if err := v.Verify(pubKey, other, sig); !errors.Is(err, auth.ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerify_StaleTimestamp(t *testing.T) {
	v := auth.NewVerifier(time.Minute)
	ts := strconv.FormatInt(time.Now().Add(-time.Hour).UnixMilli(), 10)
	pubKey, sig := signedRequest(t, ts)

	if err := v.Verify(pubKey, ts, sig); !errors.Is(err, auth.ErrStaleRequest) {
		t.Fatalf("expected ErrStaleRequest, got %v", err)
	}
}

func TestVerify_ZeroWindowDisablesFreshness(t *testing.T) {
	v := auth.NewVerifier(0)
	ts := strconv.FormatInt(time.Now().Add(-24*time.Hour).UnixMilli(), 10)
	pubKey, sig := signedRequest(t, ts)

	if err := v.Verify(pubKey, ts, sig); err != nil {
		t.Fatalf("expected old timestamp accepted with zero window, got %v", err)
	}
}

func TestVerify_BadInputs(t *testing.T) {
	v := auth.NewVerifier(auth.DefaultWindow)
	ts := nowMillis()
	pubKey, sig := signedRequest(t, ts)

	if err := v.Verify("not-hex", ts, sig); !errors.Is(err, auth.ErrBadKey) {
		t.Fatalf("expected ErrBadKey, got %v", err)
	}
	if err := v.Verify(pubKey, "not-a-number", sig); !errors.Is(err, auth.ErrBadTimestamp) {
		t.Fatalf("expected ErrBadTimestamp, got %v", err)
	}
	if err := v.Verify(pubKey, ts, "abcd"); !errors.Is(err, auth.ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}
