package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	ErrNoActiveKey = errors.New("no_active_signing_key")
	ErrKIDNotFound = errors.New("kid_not_found")
)

// Keystore holds the active signing key plus any retiring keys still
// accepted for verification. Reads are lock-free-cheap (RWMutex); writes
// happen at bootstrap and rotation only.
type Keystore struct {
	mu   sync.RWMutex
	keys []*SigningKey // keys[0] is the active one
}

// NewKeystore returns an empty keystore; call EnsureBootstrap or LoadFile
// before signing.
func NewKeystore() *Keystore {
	return &Keystore{}
}

// EnsureBootstrap generates an active key when none exists.
func (k *Keystore) EnsureBootstrap() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.keys) > 0 {
		return nil
	}
	key, err := newSigningKey()
	if err != nil {
		return err
	}
	k.keys = []*SigningKey{key}
	return nil
}

func newSigningKey() (*SigningKey, error) {
	pub, priv, err := GenerateEd25519()
	if err != nil {
		return nil, err
	}
	// Random suffix keeps KIDs unique even when two keys are minted within
	// the same second (bootstrap followed by an immediate rotation).
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &SigningKey{
		KID:       "key-" + now.Format("20060102T150405Z") + "-" + hex.EncodeToString(suffix),
		Alg:       "EdDSA",
		Priv:      priv,
		Pub:       pub,
		Status:    KeyActive,
		NotBefore: now,
	}, nil
}

// Active returns the current signing key.
func (k *Keystore) Active() (kid string, priv ed25519.PrivateKey, pub ed25519.PublicKey, err error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if len(k.keys) == 0 {
		return "", nil, nil, ErrNoActiveKey
	}
	a := k.keys[0]
	return a.KID, a.Priv, a.Pub, nil
}

// PublicKeyByKID returns the public key for a KID (active or retiring).
func (k *Keystore) PublicKeyByKID(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	for _, key := range k.keys {
		if key.KID == kid {
			pub := make(ed25519.PublicKey, len(key.Pub))
			copy(pub, key.Pub)
			return pub, nil
		}
	}
	return nil, ErrKIDNotFound
}

// Rotate makes a fresh key active and moves the previous active key to
// retiring, so tokens signed before the rotation keep verifying.
func (k *Keystore) Rotate() (string, error) {
	key, err := newSigningKey()
	if err != nil {
		return "", err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, old := range k.keys {
		old.Status = KeyRetiring
	}
	k.keys = append([]*SigningKey{key}, k.keys...)
	return key.KID, nil
}

// JWKSJSON renders the public halves of all held keys.
func (k *Keystore) JWKSJSON() ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if len(k.keys) == 0 {
		return nil, ErrNoActiveKey
	}
	return buildJWKS(k.keys), nil
}

// ----- file persistence -----

type keyFileEntry struct {
	KID       string    `json:"kid"`
	Alg       string    `json:"alg"`
	Priv      string    `json:"priv"` // base64url(private key seed+pub)
	Pub       string    `json:"pub"`  // base64url(public key)
	Status    KeyStatus `json:"status"`
	NotBefore time.Time `json:"not_before"`
}

type keyFile struct {
	Keys []keyFileEntry `json:"keys"`
}

// LoadFile reads a keystore written by SaveFile.
func LoadFile(path string) (*Keystore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var kf keyFile
	if err := json.Unmarshal(raw, &kf); err != nil {
		return nil, fmt.Errorf("keystore %s: %w", path, err)
	}
	ks := NewKeystore()
	for _, e := range kf.Keys {
		priv, err := base64.RawURLEncoding.DecodeString(e.Priv)
		if err != nil {
			return nil, fmt.Errorf("keystore %s: kid %s: %w", path, e.KID, err)
		}
		pub, err := base64.RawURLEncoding.DecodeString(e.Pub)
		if err != nil {
			return nil, fmt.Errorf("keystore %s: kid %s: %w", path, e.KID, err)
		}
		ks.keys = append(ks.keys, &SigningKey{
			KID:       e.KID,
			Alg:       e.Alg,
			Priv:      ed25519.PrivateKey(priv),
			Pub:       ed25519.PublicKey(pub),
			Status:    e.Status,
			NotBefore: e.NotBefore,
		})
	}
	if len(ks.keys) == 0 {
		return nil, ErrNoActiveKey
	}
	return ks, nil
}

// SaveFile writes the keystore (private keys included) with 0600 perms.
func (k *Keystore) SaveFile(path string) error {
	k.mu.RLock()
	kf := keyFile{Keys: make([]keyFileEntry, 0, len(k.keys))}
	for _, key := range k.keys {
		kf.Keys = append(kf.Keys, keyFileEntry{
			KID:       key.KID,
			Alg:       key.Alg,
			Priv:      base64.RawURLEncoding.EncodeToString(key.Priv),
			Pub:       base64.RawURLEncoding.EncodeToString(key.Pub),
			Status:    key.Status,
			NotBefore: key.NotBefore,
		})
	}
	k.mu.RUnlock()

	raw, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// LoadOrBootstrap loads the keystore file, generating and saving a fresh
// one when the file does not exist yet.
func LoadOrBootstrap(path string) (*Keystore, error) {
	ks, err := LoadFile(path)
	if err == nil {
		return ks, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	ks = NewKeystore()
	if err := ks.EnsureBootstrap(); err != nil {
		return nil, err
	}
	if err := ks.SaveFile(path); err != nil {
		return nil, err
	}
	return ks, nil
}
