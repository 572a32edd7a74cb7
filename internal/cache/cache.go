// Package cache — кэши ответов бэкенда с временем устаревания.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Store[V any] struct {
	lru *expirable.LRU[string, V]
}

func New[V any](size int, ttl time.Duration) *Store[V] {
	if size <= 0 {
		size = 256
	}
	return &Store[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (s *Store[V]) Get(key string) (V, bool) { return s.lru.Get(key) }

func (s *Store[V]) Put(key string, v V) { s.lru.Add(key, v) }

// DropPrefix удаляет все ключи с префиксом и возвращает их число.
func (s *Store[V]) DropPrefix(prefix string) int {
	n := 0
	for _, k := range s.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			if s.lru.Remove(k) {
				n++
			}
		}
	}
	return n
}

type dropper interface {
	DropPrefix(prefix string) int
}

// Group сбрасывает несколько кэшей разом (после сохранения документа).
type Group struct {
	mu     sync.Mutex
	stores []dropper
}

func (g *Group) Add(d dropper) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stores = append(g.stores, d)
}

func (g *Group) Invalidate(prefix string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, s := range g.stores {
		n += s.DropPrefix(prefix)
	}
	return n
}
