package gateway

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// KeyPair is an Ed25519 signing keypair. The public key is the durable
// identity anchor the gateway binds the grant to; the private key never
// appears in logs or JSON output.
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// GenerateKeyPair produces a fresh keypair from crypto/rand.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &KeyPair{PublicKey: pub, PrivateKey: priv}, nil
}

// PublicKeyString returns the base64url encoding sent to the gateway.
func (kp *KeyPair) PublicKeyString() string {
	return base64.RawURLEncoding.EncodeToString(kp.PublicKey)
}

// Seed returns the base64url-encoded private key seed, the form used for
// persistence across the redirect and for GATEWAY_PRIVATE_KEY.
func (kp *KeyPair) Seed() string {
	return base64.RawURLEncoding.EncodeToString(kp.PrivateKey.Seed())
}

// KeyPairFromSeed reconstructs a keypair from a base64url seed.
func KeyPairFromSeed(encoded string) (*KeyPair, error) {
	seed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode key seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &KeyPair{
		PublicKey:  priv.Public().(ed25519.PublicKey),
		PrivateKey: priv,
	}, nil
}

// String implements fmt.Stringer without exposing private key material.
func (kp *KeyPair) String() string {
	return fmt.Sprintf("KeyPair(pub=%s)", kp.PublicKeyString())
}
