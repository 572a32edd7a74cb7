package tenant

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

// Store хранит конфиг тенанта в локальном KV, с кэшем в памяти после первого чтения.
type Store struct {
	kv    KV
	cache map[int64]*Config
}

func NewStore(s KV) *Store {
	return &Store{kv: s, cache: map[int64]*Config{}}
}

func configKey(chatID int64) string   { return fmt.Sprintf("chat:%d:tenant", chatID) }
func selectedKey(chatID int64) string { return fmt.Sprintf("chat:%d:selected_db", chatID) }

// Get возвращает nil, nil, если тенант не выбран.
func (s *Store) Get(chatID int64) (*Config, error) {
	if c, ok := s.cache[chatID]; ok {
		return c, nil
	}
	var c Config
	if err := s.kv.GetJSON(configKey(chatID), &c); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	// запросы идут туда, куда указывает запись выбранной базы
	sel, err := s.Selected(chatID)
	if err != nil {
		return nil, err
	}
	if sel != nil && sel.Valid() {
		c.ServerURL = sel.BaseURL()
		c.DatabaseAlias = sel.DBAlias
		if sel.DBName != "" {
			c.DatabaseName = sel.DBName
		}
	}
	if !c.Configured() {
		return nil, nil
	}
	s.cache[chatID] = &c
	return &c, nil
}

func (s *Store) Save(chatID int64, c Config) error {
	if err := s.kv.SetJSON(configKey(chatID), c); err != nil {
		return err
	}
	if err := s.kv.SetJSON(selectedKey(chatID), c.Selected()); err != nil {
		return err
	}
	s.cache[chatID] = &c
	return nil
}

func (s *Store) Clear(chatID int64) error {
	delete(s.cache, chatID)
	if err := s.kv.Delete(configKey(chatID)); err != nil {
		return err
	}
	return s.kv.Delete(selectedKey(chatID))
}

// Selected — запись выбранной базы; nil, если её нет.
func (s *Store) Selected(chatID int64) (*Selected, error) {
	var sel Selected
	if err := s.kv.GetJSON(selectedKey(chatID), &sel); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sel, nil
}
