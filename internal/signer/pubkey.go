package signer

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/signkey/internal/errors"
)

const (
	commentPrefix = "untrusted comment:"
	// keyBlobSize is the 2-byte algorithm, 8-byte key ID and 32-byte Ed25519 key.
	keyBlobSize = 2 + 8 + ed25519.PublicKeySize
)

// AlgorithmEd25519 is the minisign signature algorithm tag for plain Ed25519.
const AlgorithmEd25519 = "Ed"

// PublicKey is a minisign public key as produced by `tauri signer generate`.
type PublicKey struct {
	Algorithm string
	ID        [8]byte
	Key       ed25519.PublicKey
	Comment   string

	// Encoded is the value Tauri expects in tauri.conf.json (plugins.updater.pubkey):
	// the whole minisign text, base64-encoded.
	Encoded string
}

// KeyID formats the key ID the way minisign prints it.
func (k *PublicKey) KeyID() string {
	return fmt.Sprintf("%016X", binary.LittleEndian.Uint64(k.ID[:]))
}

// KeyBase64 returns the raw minisign key line.
func (k *PublicKey) KeyBase64() string {
	blob := make([]byte, 0, keyBlobSize)
	blob = append(blob, k.Algorithm...)
	blob = append(blob, k.ID[:]...)
	blob = append(blob, k.Key...)
	return base64.StdEncoding.EncodeToString(blob)
}

// ReadPublicKey loads and parses a public key file.
func ReadPublicKey(path string) (*PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrKey,
			"Couldn't read public key "+path,
			"Check the path; the signer writes it next to the private key with a .pub suffix.")
	}
	key, err := ParsePublicKey(data)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrKey,
			"Couldn't parse public key "+path,
			"Expected a minisign public key, either as text or base64-encoded as Tauri writes it.")
	}
	return key, nil
}

// ParsePublicKey accepts minisign public key text, or that text base64-encoded
// once more (the form Tauri writes to the .pub file).
func ParsePublicKey(data []byte) (*PublicKey, error) {
	text := bytes.TrimSpace(data)
	if len(text) == 0 {
		return nil, fmt.Errorf("empty public key")
	}

	if !bytes.HasPrefix(text, []byte(commentPrefix)) {
		decoded, err := base64.StdEncoding.DecodeString(string(text))
		if err != nil {
			return nil, fmt.Errorf("neither minisign text nor base64: %w", err)
		}
		decoded = bytes.TrimSpace(decoded)
		if !bytes.HasPrefix(decoded, []byte(commentPrefix)) {
			return nil, fmt.Errorf("decoded key has no %q line", commentPrefix)
		}
		key, err := parseMinisign(decoded)
		if err != nil {
			return nil, err
		}
		key.Encoded = string(text)
		return key, nil
	}

	key, err := parseMinisign(text)
	if err != nil {
		return nil, err
	}
	key.Encoded = base64.StdEncoding.EncodeToString(append(text, '\n'))
	return key, nil
}

func parseMinisign(text []byte) (*PublicKey, error) {
	lines := strings.Split(strings.ReplaceAll(string(text), "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("expected a comment line and a key line, got %d line(s)", len(lines))
	}

	comment := strings.TrimSpace(strings.TrimPrefix(lines[0], commentPrefix))

	blob, err := base64.StdEncoding.DecodeString(strings.TrimSpace(lines[1]))
	if err != nil {
		return nil, fmt.Errorf("key line is not base64: %w", err)
	}
	if len(blob) != keyBlobSize {
		return nil, fmt.Errorf("key is %d bytes, want %d", len(blob), keyBlobSize)
	}

	alg := string(blob[:2])
	if alg != AlgorithmEd25519 {
		return nil, fmt.Errorf("unsupported signature algorithm %q", alg)
	}

	key := &PublicKey{
		Algorithm: alg,
		Key:       ed25519.PublicKey(append([]byte(nil), blob[10:]...)),
		Comment:   comment,
	}
	copy(key.ID[:], blob[2:10])
	return key, nil
}
