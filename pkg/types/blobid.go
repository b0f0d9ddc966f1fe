package types

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// BlobID identifies scanned content by a Git-style SHA-1 hash (20 bytes),
// so the same file found twice (or in git and on disk) is scanned once.
type BlobID [20]byte

// ComputeBlobID computes SHA-1("blob {len}\0{content}").
func ComputeBlobID(content []byte) BlobID {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)

	var id BlobID
	copy(id[:], h.Sum(nil))
	return id
}

// Hex returns the 40-character hex string.
func (id BlobID) Hex() string {
	return hex.EncodeToString(id[:])
}

// String implements Stringer.
func (id BlobID) String() string {
	return id.Hex()
}

// ParseBlobID parses a 40-char hex string.
func ParseBlobID(hexStr string) (BlobID, error) {
	var id BlobID
	if len(hexStr) != 2*len(id) {
		return id, fmt.Errorf("invalid blob ID length: expected %d, got %d", 2*len(id), len(hexStr))
	}
	if _, err := hex.Decode(id[:], []byte(hexStr)); err != nil {
		return BlobID{}, fmt.Errorf("invalid hex string: %w", err)
	}
	return id, nil
}

// MarshalJSON implements json.Marshaler.
func (id BlobID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *BlobID) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	parsed, err := ParseBlobID(hexStr)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
