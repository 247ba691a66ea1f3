// Package identity keeps the client's pseudonymous user id across runs.
package identity

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/textchan-dev/textchan/shared/domain"
	"github.com/textchan-dev/textchan/shared/logger"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Length   = 8
)

// Generate returns a fresh random id of Length characters from A-Z0-9.
func Generate() domain.UserId {
	var b strings.Builder
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String()
}

// DefaultPath is $XDG_CONFIG_HOME/textchan/user_id, or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "textchan", "user_id"), nil
}

// Load returns the id stored at path, creating one when the file is missing
// or empty. If it cannot be persisted the new id is still returned and only
// lives as long as the process.
func Load(path string) domain.UserId {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if id := strings.TrimSpace(string(data)); id != "" && len(id) <= domain.MaxUserIdLength {
				return id
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.Log.Warn("cannot read user id", "path", path, "error", err)
		}
	}

	id := Generate()
	if err := save(path, id); err != nil {
		logger.Log.Warn("cannot persist user id, using a temporary one", "path", path, "error", err)
	}
	return id
}

func save(path string, id domain.UserId) error {
	if path == "" {
		return errors.New("no path configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(id+"\n"), 0o600)
}
