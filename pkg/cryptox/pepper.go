package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrCreatePepper reads the pepper stored at path, generating and
// persisting a fresh one (0600) the first time. Losing the file invalidates
// every stored password hash, so it is never regenerated once present.
func LoadOrCreatePepper(path string) (string, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("create pepper dir: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		pepper := strings.TrimSpace(string(data))
		if pepper == "" {
			return "", fmt.Errorf("pepper file %s is empty", path)
		}
		return pepper, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("read pepper: %w", err)
	}

	// Generate a new pepper and save it to the file
	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	pepper := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(path, []byte(pepper), 0600); err != nil {
		return "", fmt.Errorf("write pepper: %w", err)
	}
	return pepper, nil
}
