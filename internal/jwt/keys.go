package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"time"
)

// KeyStatus distinguishes the signing key from keys kept only for
// verification during a rotation grace window.
type KeyStatus string

const (
	KeyActive   KeyStatus = "active"
	KeyRetiring KeyStatus = "retiring"
)

// SigningKey is one Ed25519 keypair with its JWKS metadata.
type SigningKey struct {
	KID       string             `json:"kid"`
	Alg       string             `json:"alg"` // "EdDSA"
	Priv      ed25519.PrivateKey `json:"-"`
	Pub       ed25519.PublicKey  `json:"-"`
	Status    KeyStatus          `json:"status"`
	NotBefore time.Time          `json:"not_before"`
}

// GenerateEd25519 generates a fresh keypair.
func GenerateEd25519() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// ----- JWKS (serialization) -----

type jwk struct {
	Kty string `json:"kty"` // "OKP"
	Crv string `json:"crv"` // "Ed25519"
	Kid string `json:"kid"`
	Alg string `json:"alg"` // "EdDSA"
	Use string `json:"use"` // "sig"
	X   string `json:"x"`   // base64url(pub)
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// buildJWKS renders the public halves of the given keys as a JWKS document.
func buildJWKS(keys []*SigningKey) []byte {
	j := jwks{Keys: make([]jwk, 0, len(keys))}
	for _, k := range keys {
		j.Keys = append(j.Keys, jwk{
			Kty: "OKP",
			Crv: "Ed25519",
			Kid: k.KID,
			Alg: k.Alg,
			Use: "sig",
			X:   base64.RawURLEncoding.EncodeToString(k.Pub),
		})
	}
	b, _ := json.Marshal(j)
	return b
}
