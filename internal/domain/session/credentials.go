package session

import (
	"errors"
	"fmt"

	"github.com/sewman/uwip-bot/internal/infra/kv"
)

type KV interface {
	GetJSON(key string, v any) error
	SetJSON(key string, v any) error
	Delete(key string) error
}

type CredentialStore struct {
	kv KV
}

func NewCredentialStore(s KV) *CredentialStore { return &CredentialStore{kv: s} }

func credKey(chatID int64) string { return fmt.Sprintf("chat:%d:autologin", chatID) }

// Load возвращает nil, nil, если автологин не сохранён.
func (s *CredentialStore) Load(chatID int64) (*Credentials, error) {
	var c Credentials
	if err := s.kv.GetJSON(credKey(chatID), &c); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if c.Username == "" || c.PasswordHash == "" {
		return nil, nil
	}
	return &c, nil
}

func (s *CredentialStore) Save(chatID int64, c Credentials) error {
	return s.kv.SetJSON(credKey(chatID), c)
}

func (s *CredentialStore) Delete(chatID int64) error {
	return s.kv.Delete(credKey(chatID))
}
