package cache

import (
	"testing"
	"time"
)

func TestGroupInvalidatesOnlyPrefix(t *testing.T) {
	lists := New[[]string](16, time.Minute)
	home := New[int](16, time.Minute)

	lists.Put("db|u1|list|1", []string{"a"})
	lists.Put("db|u2|list|1", []string{"b"})
	home.Put("db|u1|home", 42)

	var g Group
	g.Add(lists)
	g.Add(home)

	if n := g.Invalidate("db|u1|"); n != 2 {
		t.Fatalf("dropped %d, want 2", n)
	}
	if _, ok := lists.Get("db|u1|list|1"); ok {
		t.Fatal("u1 list must be dropped")
	}
	if _, ok := home.Get("db|u1|home"); ok {
		t.Fatal("u1 home must be dropped")
	}
	if v, ok := lists.Get("db|u2|list|1"); !ok || v[0] != "b" {
		t.Fatal("u2 list must survive")
	}
}

func TestStoreExpires(t *testing.T) {
	s := New[int](4, 20*time.Millisecond)
	s.Put("k", 1)
	if _, ok := s.Get("k"); !ok {
		t.Fatal("expected hit")
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok := s.Get("k"); ok {
		t.Fatal("expected expiry")
	}
}
