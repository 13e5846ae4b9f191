package favicon

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// extensions in lookup order. A domain has at most one cached file.
var extensions = []string{"png", "jpg", "gif", "ico", "svg"}

// Key returns the cache file stem for a domain: hex(md5(domain)).
func Key(domain string) string {
	sum := md5.Sum([]byte(domain))
	return hex.EncodeToString(sum[:])
}

// CachedFile describes one file in the cache directory.
type CachedFile struct {
	Name    string
	ModTime time.Time
}

// Store is the flat favicon directory shared by every user.
type Store struct {
	dir    string
	prefix string // public URL prefix, ex: /favicons
}

// NewStore returns a store rooted at dir. The directory is created on first write.
func NewStore(dir, publicPrefix string) *Store {
	return &Store{
		dir:    dir,
		prefix: "/" + strings.Trim(publicPrefix, "/"),
	}
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// PublicPath returns the URL path a cached file is served under.
func (s *Store) PublicPath(name string) string {
	return path.Join(s.prefix, name)
}

// NameOf returns the file name behind a public path, or "" when the path is
// not served by this store.
func (s *Store) NameOf(publicPath string) string {
	if !strings.HasPrefix(publicPath, s.prefix+"/") {
		return ""
	}
	return path.Base(publicPath)
}

// Lookup returns the public path of the cached favicon for domain, if any.
func (s *Store) Lookup(domain string) (string, bool) {
	key := Key(domain)
	for _, ext := range extensions {
		name := key + "." + ext
		if _, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
			return s.PublicPath(name), true
		}
	}
	return "", false
}

// Write stores data as the favicon of domain and returns its public path.
// The file is written under a temporary name and renamed, so readers never
// observe a partial icon. Files of other extensions for the domain are removed;
// callers check Lookup first so no referenced file is replaced.
func (s *Store) Write(domain, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create favicon directory: %w", err)
	}

	key := Key(domain)
	name := key + "." + ext

	tmp := filepath.Join(s.dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write favicon: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to store favicon: %w", err)
	}

	for _, other := range extensions {
		if other == ext {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, key+"."+other)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to remove stale favicon: %w", err)
		}
	}

	return s.PublicPath(name), nil
}

// Files lists cached favicons. Temporary files are skipped.
func (s *Store) Files() ([]CachedFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list favicon directory: %w", err)
	}

	files := make([]CachedFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, CachedFile{Name: e.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

// Remove deletes a cached file by name.
func (s *Store) Remove(name string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid favicon name: %s", name)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove favicon: %w", err)
	}
	return nil
}
