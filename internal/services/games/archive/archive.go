// Package archive seals game history snapshots into tamper-evident blobs.
//
// The snapshot is serialized canonically (sorted keys, stable separators),
// encrypted with AES-256-GCM under the process-wide history key, and tagged
// with an HMAC-SHA256 over the ciphertext. The MAC key is derived from the
// same master key by domain-separated hashing so that the two uses never
// share key material directly.
package archive

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"

	perr "cardduel/internal/platform/errors"
	dom "cardduel/internal/services/games/domain"
)

// macDomain separates the MAC key derivation from the encryption key
const macDomain = "cardduel/history-mac/v1"

// IntegrityMessage is the fixed client-facing text for a MAC mismatch
const IntegrityMessage = "archived game history failed integrity verification"

// Sealer encrypts and authenticates snapshots
// Immutable after construction; safe for concurrent use
type Sealer struct {
	aead   cipher.AEAD
	macKey []byte
}

// NewSealer derives the cipher and MAC keys from the 32-byte master key
func NewSealer(master []byte) (*Sealer, error) {
	if len(master) != 32 {
		return nil, perr.InvalidArgf("history key must be exactly 32 bytes, got %d", len(master))
	}
	block, err := aes.NewCipher(master)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "history cipher init")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "history aead init")
	}

	h := sha256.New()
	h.Write([]byte(macDomain))
	h.Write(master)

	return &Sealer{aead: aead, macKey: h.Sum(nil)}, nil
}

// Seal serializes, encrypts and tags a snapshot
// Returns the ciphertext (nonce-prefixed) and the hex MAC over it
func (s *Sealer) Seal(snap dom.Snapshot) (ciphertext []byte, mac string, err error) {
	plain, err := Canonical(snap)
	if err != nil {
		return nil, "", err
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, "", perr.Wrapf(err, perr.ErrorCodeUnknown, "history nonce")
	}

	ct := s.aead.Seal(nonce, nonce, plain, nil)
	return ct, s.tag(ct), nil
}

// Open verifies the MAC then decrypts and decodes the snapshot
// A MAC or authentication mismatch yields an integrity error; the payload
// is never returned on mismatch
func (s *Sealer) Open(ciphertext []byte, mac string) (dom.Snapshot, error) {
	if !hmac.Equal([]byte(s.tag(ciphertext)), []byte(mac)) {
		return dom.Snapshot{}, perr.Integrityf("%s", IntegrityMessage)
	}

	ns := s.aead.NonceSize()
	if len(ciphertext) < ns {
		return dom.Snapshot{}, perr.Integrityf("%s", IntegrityMessage)
	}
	plain, err := s.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return dom.Snapshot{}, perr.Integrityf("%s", IntegrityMessage)
	}

	var snap dom.Snapshot
	if err := json.Unmarshal(plain, &snap); err != nil {
		return dom.Snapshot{}, perr.Integrityf("%s", IntegrityMessage)
	}
	return snap, nil
}

// tag computes the hex HMAC-SHA256 over ct with the derived MAC key
func (s *Sealer) tag(ct []byte) string {
	m := hmac.New(sha256.New, s.macKey)
	m.Write(ct)
	return hex.EncodeToString(m.Sum(nil))
}

// Canonical serializes v with sorted keys and stable separators
// encoding/json already sorts struct fields by declaration and map keys
// lexically; re-encoding through a generic map normalizes field order too
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "canonical marshal")
	}

	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "canonical normalize")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "canonical encode")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
