// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

// Package envelope implements the hybrid encryption used to protect
// notification content end-to-end.
//
// Encryption Algorithm:
//   - AES-256-GCM over the UTF-8 plaintext, fresh key and 12-byte IV per call
//   - RSA-OAEP (SHA-256) wrap of the raw AES key with the device public key
//   - Output: base64(JSON({k, i, p, t})) where every field is base64 itself
//
// The recipient public key is a JWK (as exported by WebCrypto or the mobile
// keychain). The matching private key is stored client side as a JSON string
// holding a PKCS#8 PEM block; Decrypt accepts that form for tooling and tests.
//
// Example Usage:
//
//	blob, err := envelope.Encrypt(`{"tit":"Alert"}`, device.PublicKey)
//	plaintext, err := envelope.Decrypt(blob, device.PrivateKey)
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

const (
	// aesKeySize is the size of the per-envelope AES key in bytes (256 bits).
	aesKeySize = 32

	// ivSize is the size of the GCM nonce in bytes.
	ivSize = 12

	// tagSize is the size of the GCM authentication tag in bytes.
	tagSize = 16
)

var (
	// ErrInvalidPublicKey is returned when the recipient JWK cannot be used.
	ErrInvalidPublicKey = errors.New("invalid recipient public key")

	// ErrInvalidPrivateKey is returned when the PEM private key cannot be parsed.
	ErrInvalidPrivateKey = errors.New("invalid recipient private key")

	// ErrMalformedEnvelope is returned for bad base64, bad JSON or wrong field sizes.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrDecryptionFailed is returned when key unwrap or GCM authentication fails.
	ErrDecryptionFailed = errors.New("decryption failed: invalid key or authentication tag")
)

// Envelope is the wire form of an encrypted blob.
type Envelope struct {
	// K is the RSA-OAEP wrapped AES key.
	K string `json:"k"`
	// I is the GCM nonce.
	I string `json:"i"`
	// P is the ciphertext without the tag.
	P string `json:"p"`
	// T is the GCM authentication tag.
	T string `json:"t"`
}

// Encrypt seals plaintext for the holder of the private key matching
// recipientPublicKeyJWK and returns the base64 envelope string.
func Encrypt(plaintext, recipientPublicKeyJWK string) (string, error) {
	pub, err := ParsePublicKeyJWK(recipientPublicKeyJWK)
	if err != nil {
		return "", err
	}
	return EncryptWithKey(plaintext, pub)
}

// EncryptWithKey is Encrypt for an already imported public key.
func EncryptWithKey(plaintext string, pub *rsa.PublicKey) (string, error) {
	if pub == nil {
		return "", ErrInvalidPublicKey
	}

	key := make([]byte, aesKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate content key: %w", err)
	}
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, key, nil)
	if err != nil {
		return "", fmt.Errorf("%w: key wrap failed: %v", ErrInvalidPublicKey, err)
	}

	env := Envelope{
		K: base64.StdEncoding.EncodeToString(wrapped),
		I: base64.StdEncoding.EncodeToString(iv),
		P: base64.StdEncoding.EncodeToString(ciphertext),
		T: base64.StdEncoding.EncodeToString(tag),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decrypt opens an envelope produced by Encrypt. privateKeyPEM is the
// JSON-string-wrapped PEM key as stored by the clients; a bare PEM block is
// accepted too. Decrypt never returns partial plaintext.
func Decrypt(envelope, privateKeyPEM string) (string, error) {
	priv, err := ParsePrivateKeyPEM(privateKeyPEM)
	if err != nil {
		return "", err
	}
	return DecryptWithKey(envelope, priv)
}

// DecryptWithKey is Decrypt for an already imported private key.
func DecryptWithKey(envelope string, priv *rsa.PrivateKey) (string, error) {
	env, err := Parse(envelope)
	if err != nil {
		return "", err
	}

	wrapped, iv, ciphertext, tag, err := env.decode()
	if err != nil {
		return "", err
	}

	key, err := rsa.DecryptOAEP(sha256.New(), nil, priv, wrapped, nil)
	if err != nil || len(key) != aesKeySize {
		return "", ErrDecryptionFailed
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// Parse decodes the outer base64 and JSON layers of an envelope string.
func Parse(envelope string) (*Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: outer base64: %v", ErrMalformedEnvelope, err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrMalformedEnvelope, err)
	}
	return &env, nil
}

// String re-encodes the envelope into its wire form.
func (e *Envelope) String() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func (e *Envelope) decode() (wrapped, iv, ciphertext, tag []byte, err error) {
	fields := []struct {
		name string
		src  string
		dst  *[]byte
	}{
		{"k", e.K, &wrapped},
		{"i", e.I, &iv},
		{"p", e.P, &ciphertext},
		{"t", e.T, &tag},
	}
	for _, f := range fields {
		b, decErr := base64.StdEncoding.DecodeString(f.src)
		if decErr != nil {
			return nil, nil, nil, nil, fmt.Errorf("%w: field %s: %v", ErrMalformedEnvelope, f.name, decErr)
		}
		*f.dst = b
	}

	switch {
	case len(wrapped) == 0:
		err = fmt.Errorf("%w: empty wrapped key", ErrMalformedEnvelope)
	case len(iv) != ivSize:
		err = fmt.Errorf("%w: iv must be %d bytes, got %d", ErrMalformedEnvelope, ivSize, len(iv))
	case len(tag) != tagSize:
		err = fmt.Errorf("%w: tag must be %d bytes, got %d", ErrMalformedEnvelope, tagSize, len(tag))
	}
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return wrapped, iv, ciphertext, tag, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
