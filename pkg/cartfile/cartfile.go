// Package cartfile reads and writes the shared o_o.ini cart file.
package cartfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ssargent/sharecart/pkg/cart"
)

const (
	// FileName is the name every Sharecart game uses for the cart.
	FileName = "o_o.ini"
	// DirName is the directory holding the cart, a sibling of the game's own.
	DirName = "dat"
)

// ErrNotFound is returned by Locate when no cart file exists.
var ErrNotFound = errors.New("cart file not found")

// Locate finds the cart for a game installed in exeDir. Games keep their
// executable in their own folder and share ../dat/o_o.ini; a dat folder
// inside exeDir is accepted as a fallback.
func Locate(exeDir string) (string, error) {
	candidates := []string{
		filepath.Join(exeDir, "..", DirName, FileName),
		filepath.Join(exeDir, DirName, FileName),
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: looked in %s", ErrNotFound, strings.Join(candidates, ", "))
}

// Store loads and saves one cart file
type Store struct {
	path  string
	codec *cart.Codec
	mutex sync.Mutex
}

// New creates a store for the cart at path. A nil codec uses cart.NewCodec.
func New(path string, codec *cart.Codec) *Store {
	if codec == nil {
		codec = cart.NewCodec()
	}
	return &Store{path: path, codec: codec}
}

// Path returns the cart file location
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the cart file is present
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Mode().IsRegular()
}

// Load reads and decodes the cart. A missing file is a fresh cart and
// yields the default record.
func (s *Store) Load() (cart.Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return cart.Record{}, nil
	}
	if err != nil {
		return cart.Record{}, fmt.Errorf("failed to read cart file: %w", err)
	}

	record, err := s.codec.Decode(string(data))
	if err != nil {
		return cart.Record{}, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return record, nil
}

// Save encodes r and replaces the cart file. The new contents are written to
// a temporary file in the same directory and renamed into place, so readers
// never see a partial cart.
func (s *Store) Save(r cart.Record) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cart directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+FileName+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.WriteString(s.codec.Encode(r)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cart: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync cart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cart: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set cart permissions: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace cart file: %w", err)
	}
	return nil
}
