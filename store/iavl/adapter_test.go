package iavl

import (
	"testing"
)

func TestCommitAndReload(t *testing.T) {
	s := MemCommitStore()

	cache := s.CacheWrap()
	if err := cache.Set([]byte("mykey"), []byte("myvalue")); err != nil {
		t.Fatalf("set: %+v", err)
	}

	// not yet committed, reads against committed state see nothing
	if val, _ := s.Get([]byte("mykey")); val != nil {
		t.Fatalf("uncommitted write visible: %q", val)
	}

	if err := cache.Write(); err != nil {
		t.Fatalf("write: %+v", err)
	}

	val, err := s.Get([]byte("mykey"))
	if err != nil {
		t.Fatalf("get: %+v", err)
	}
	if string(val) != "myvalue" {
		t.Fatalf("want %q, got %q", "myvalue", val)
	}

	id := s.LatestVersion()
	if id.Version != 1 {
		t.Fatalf("want version 1, got %d", id.Version)
	}
	if len(id.Hash) == 0 {
		t.Fatal("missing commit hash")
	}
}

func TestDiscardRollsBack(t *testing.T) {
	s := MemCommitStore()

	cache := s.CacheWrap()
	if err := cache.Set([]byte("k"), []byte("committed")); err != nil {
		t.Fatalf("set: %+v", err)
	}
	if err := cache.Write(); err != nil {
		t.Fatalf("write: %+v", err)
	}

	cache = s.CacheWrap()
	if err := cache.Set([]byte("k"), []byte("scratch")); err != nil {
		t.Fatalf("set: %+v", err)
	}
	cache.Discard()

	val, err := s.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %+v", err)
	}
	if string(val) != "committed" {
		t.Fatalf("discard did not roll back, got %q", val)
	}
}

func TestNestedCacheWrap(t *testing.T) {
	s := MemCommitStore()

	outer := s.CacheWrap()
	inner := outer.CacheWrap()

	if err := inner.Set([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("set: %+v", err)
	}
	if err := inner.Write(); err != nil {
		t.Fatalf("inner write: %+v", err)
	}

	// the inner write landed in the outer scratch-pad, not on disk
	if val, _ := outer.Get([]byte("k")); string(val) != "v" {
		t.Fatalf("inner write not visible in outer, got %q", val)
	}
	if val, _ := s.Get([]byte("k")); val != nil {
		t.Fatalf("inner write already committed: %q", val)
	}
}
