// Package cache stores fetched contract sources on disk, one file per address.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the extension of stored source files.
const Ext = ".sol"

type Store struct {
	dir string
}

// New returns a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Key computes a file-safe key for inputs that cannot be used as a file name.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Path returns the file an address is stored in. Addresses are used verbatim
// so the file name doubles as the contract id of later analysis results.
func (s *Store) Path(address string) string {
	name := address
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`+"\x00") {
		name = Key(address)
	}
	return filepath.Join(s.dir, name+Ext)
}

// Has reports whether a non-empty source is stored for address.
func (s *Store) Has(address string) bool {
	info, err := os.Stat(s.Path(address))
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Store writes data through a temporary file so an interrupted crawl never
// leaves a truncated source behind.
func (s *Store) Store(address string, data []byte) error {
	path := s.Path(address)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return err
	}
	return os.Rename(tmp.Name(), path)
}
