package serialization

import (
	"crypto/sha256"
	"encoding/hex"
)

// checksum returns the hex SHA-256 of data.
func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// validateChecksum compares the data section against the stored checksum.
func validateChecksum(data []byte, stored string) error {
	if checksum(data) != stored {
		return ErrChecksumMismatch
	}
	return nil
}
