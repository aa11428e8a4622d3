package blob

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Local stores blobs on disk under a root directory and issues HMAC-signed
// expiring URLs, mirroring the signed-URL contract of a hosted bucket.
type Local struct {
	root    string
	baseURL string
	secret  []byte
	now     func() time.Time
}

func NewLocal(root, baseURL string, secret []byte) *Local {
	return &Local{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		now:     time.Now,
	}
}

func (l *Local) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	full := filepath.Join(l.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("blob put: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("blob put: %w", err)
	}
	return l.baseURL + "/" + path, nil
}

func (l *Local) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if _, err := os.Stat(filepath.Join(l.root, filepath.FromSlash(path))); err != nil {
		return "", fmt.Errorf("blob sign: %w", err)
	}
	expires := l.now().Add(ttl).Unix()
	sig := l.sign(path, expires)
	return fmt.Sprintf("%s/%s?expires=%d&sig=%s", l.baseURL, path, expires, sig), nil
}

func (l *Local) Delete(ctx context.Context, path string) error {
	if err := os.Remove(filepath.Join(l.root, filepath.FromSlash(path))); err != nil {
		return fmt.Errorf("blob delete: %w", err)
	}
	return nil
}

// Open returns the stored bytes for serving. Callers must have verified the
// signature first for private paths.
func (l *Local) Open(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("blob open: %w", err)
	}
	return data, nil
}

// Verify checks a signed URL's expiry and signature for a given path.
func (l *Local) Verify(path string, expires int64, sig string) bool {
	if l.now().Unix() > expires {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(l.sign(path, expires)))
}

func (l *Local) sign(path string, expires int64) string {
	mac := hmac.New(sha256.New, l.secret)
	mac.Write([]byte(path + "|" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
