package util

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"
)

func DirExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && info.IsDir()
}

// EnsureParentDir creates the directory holding path if it is missing.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if DirExists(dir) {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Digest is the hex blake3-256 sum of b, used to identify emitted documents.
func Digest(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
