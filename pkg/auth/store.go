// Package auth keeps the signed-in session: tokens on disk, their claims and
// the refresh logic around them.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/buildtrack/buildtrack-terminal/pkg/form"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

const (
	keyAccess  = "session-access"
	keyRefresh = "session-refresh"
	keyProfile = "session-profile"
)

// Store persists the token pair and the cached profile under one directory
type Store struct {
	d        *diskv.Diskv
	basePath string
}

var _ form.TokenSource = (*Store)(nil)

// NewStore opens (or creates on first write) a token store at basePath
func NewStore(basePath string) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			FilePerm:          0o600,
			PathPerm:          0o700,
		}),
		basePath: basePath,
	}
}

// BasePath returns the store directory
func (s *Store) BasePath() string { return s.basePath }

// Save stores a token pair. An empty refresh token keeps the stored one.
func (s *Store) Save(pair models.TokenPair) error {
	if pair.Access == "" {
		return errors.New("refusing to store an empty access token")
	}
	if err := s.d.Write(keyAccess, []byte(pair.Access)); err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}
	if pair.Refresh != "" {
		if err := s.d.Write(keyRefresh, []byte(pair.Refresh)); err != nil {
			return fmt.Errorf("saving refresh token: %w", err)
		}
	}
	return nil
}

// Pair returns the stored tokens; missing entries are empty strings
func (s *Store) Pair() (models.TokenPair, error) {
	access, err := s.read(keyAccess)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.read(keyRefresh)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Token returns the stored access token
func (s *Store) Token() (string, error) {
	return s.read(keyAccess)
}

// SaveProfile caches the signed-in user
func (s *Store) SaveProfile(u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.d.Write(keyProfile, data)
}

// Profile returns the cached user, nil when signed out
func (s *Store) Profile() (*models.User, error) {
	if !s.d.Has(keyProfile) {
		return nil, nil
	}
	data, err := s.d.Read(keyProfile)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("reading cached profile: %w", err)
	}
	return &u, nil
}

// Clear removes every stored session entry
func (s *Store) Clear() error {
	for _, key := range []string{keyAccess, keyRefresh, keyProfile} {
		if !s.d.Has(key) {
			continue
		}
		if err := s.d.Erase(key); err != nil {
			return fmt.Errorf("clearing %s: %w", key, err)
		}
	}
	return nil
}

func (s *Store) read(key string) (string, error) {
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(val)), nil
}

// keyToPath maps `session-access` to session/access
func keyToPath(key string) *diskv.PathKey {
	parts := strings.Split(key, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKey(pk *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pk.Path...), pk.FileName), "-")
}
