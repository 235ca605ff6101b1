package gateway

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Request signature headers. The gateway verifies the signature against
// the public key registered at pairing time.
const (
	HeaderAppID     = "X-Glueco-App-Id"
	HeaderTimestamp = "X-Glueco-Timestamp"
	HeaderNonce     = "X-Glueco-Nonce"
	HeaderSignature = "X-Glueco-Signature"
)

const signatureVersion = "v1"

// Signer signs canonical request digests. Implementations hold the
// private key; nothing outside this file reads it.
type Signer interface {
	Sign(message []byte) []byte
	PublicKeyString() string
}

type keyPairSigner struct {
	kp *KeyPair
}

// NewSigner wraps a session-embedded keypair.
func NewSigner(kp *KeyPair) Signer {
	return &keyPairSigner{kp: kp}
}

// NewEnvironmentSigner builds a signer from a base64url private key seed,
// the environment-resident key mode. The keypair never touches the
// session or any redirect in this mode.
func NewEnvironmentSigner(seed string) (Signer, error) {
	kp, err := KeyPairFromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("environment signing key: %w", err)
	}
	return &keyPairSigner{kp: kp}, nil
}

func (s *keyPairSigner) Sign(message []byte) []byte {
	return ed25519.Sign(s.kp.PrivateKey, message)
}

func (s *keyPairSigner) PublicKeyString() string {
	return s.kp.PublicKeyString()
}

// canonicalMessage is the byte string actually signed: version, app id,
// timestamp, nonce and the hex digest of the request body, newline
// separated. The gateway rebuilds the same string on its side.
func canonicalMessage(appID, timestamp, nonce string, body []byte) []byte {
	digest := sha256.Sum256(body)
	msg := signatureVersion + "\n" + appID + "\n" + timestamp + "\n" + nonce + "\n" + hex.EncodeToString(digest[:])
	return []byte(msg)
}

// SignRequest attaches proof-of-possession headers to req for the given
// body. Each call draws a fresh nonce, so concurrent callers sharing a
// signer never collide.
func SignRequest(req *http.Request, signer Signer, appID string, body []byte) error {
	nonceBytes := make([]byte, 16)
	if _, err := rand.Read(nonceBytes); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(nonceBytes)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	sig := signer.Sign(canonicalMessage(appID, timestamp, nonce, body))

	req.Header.Set(HeaderAppID, appID)
	req.Header.Set(HeaderTimestamp, timestamp)
	req.Header.Set(HeaderNonce, nonce)
	req.Header.Set(HeaderSignature, base64.RawURLEncoding.EncodeToString(sig))
	return nil
}

// VerifySignature checks request headers against a public key. The
// gateway owns verification in production; this exists for tests and the
// local development proxy.
func VerifySignature(header http.Header, publicKey ed25519.PublicKey, body []byte) bool {
	sig, err := base64.RawURLEncoding.DecodeString(header.Get(HeaderSignature))
	if err != nil {
		return false
	}
	msg := canonicalMessage(
		header.Get(HeaderAppID),
		header.Get(HeaderTimestamp),
		header.Get(HeaderNonce),
		body,
	)
	return ed25519.Verify(publicKey, msg, sig)
}
