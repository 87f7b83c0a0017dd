package cache_test

import (
	"testing"
	"time"

	"github.com/mymoney-app/mymoney-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_DeletePrefix(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("dashboard:u1:3m:1", "a")
	c.Set("dashboard:u1:6m:1", "b")
	c.Set("dashboard:u2:3m:1", "c")

	c.DeletePrefix("dashboard:u1:")

	if _, ok := c.Get("dashboard:u1:3m:1"); ok {
		t.Error("expected u1 3m entry to be deleted")
	}
	if _, ok := c.Get("dashboard:u1:6m:1"); ok {
		t.Error("expected u1 6m entry to be deleted")
	}
	if _, ok := c.Get("dashboard:u2:3m:1"); !ok {
		t.Error("expected u2 entry to survive")
	}
}
