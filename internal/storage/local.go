package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LocalStore keeps files on the local filesystem under a root directory
// and signs download URLs with HMAC-SHA256 so they can be served by an
// unauthenticated handler until they expire.
type LocalStore struct {
	root    string
	baseURL string
	secret  []byte
	now     func() time.Time
}

// NewLocalStore creates a LocalStore rooted at dir. baseURL prefixes the
// URLs returned by SignedURL (e.g. "http://localhost:8080").
func NewLocalStore(dir, baseURL string, secret []byte) *LocalStore {
	return &LocalStore{
		root:    dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		now:     time.Now,
	}
}

// Put writes data under key. The key must be a clean relative path; an
// existing file at the same key is an error, never overwritten.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	path, err := s.resolve(key)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrKeyExists, key)
		}
		return 0, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	n, err := f.Write(data)
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("write file: %w", err)
	}
	return int64(n), nil
}

// Remove deletes the file stored under key. A missing file is not an error.
func (s *LocalStore) Remove(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Open returns the filesystem path for a stored key, verifying the file
// exists. Used by the download handler after signature verification.
func (s *LocalStore) Open(key string) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", err
	}
	return path, nil
}

// SignedURL returns a download URL valid for ttl.
func (s *LocalStore) SignedURL(key string, ttl time.Duration) (string, error) {
	if _, err := s.resolve(key); err != nil {
		return "", err
	}
	exp := s.now().Add(ttl).Unix()
	sig := s.sign(key, exp)

	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	q.Set("sig", sig)
	return fmt.Sprintf("%s/files/%s?%s", s.baseURL, key, q.Encode()), nil
}

// Verify checks a signature and expiry produced by SignedURL.
// Returns ErrExpired when the link is past its expiry.
func (s *LocalStore) Verify(key string, exp int64, sig string) error {
	if s.now().Unix() > exp {
		return ErrExpired
	}
	expected := s.sign(key, exp)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrBadSignature
	}
	return nil
}

// Signature verification errors.
var (
	ErrExpired      = fmt.Errorf("download link expired")
	ErrBadSignature = fmt.Errorf("invalid download signature")
)

func (s *LocalStore) sign(key string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", key, exp)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// resolve maps a key to an absolute path under root, rejecting traversal.
func (s *LocalStore) resolve(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}
