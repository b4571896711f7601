package cache

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

type entry struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func TestLoadMissingFile(t *testing.T) {
	c := New[entry](filepath.Join(t.TempDir(), "cache.json"))
	if err := c.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New[entry](path)
	if err := c.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
}

func TestPutPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := New[entry](path)
	if err := c.Put("abc", entry{"happy", 0.8}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	again := New[entry](path)
	if err := again.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := again.Get("abc")
	if !ok || got != (entry{"happy", 0.8}) {
		t.Fatalf("Get = %+v, %v", got, ok)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temporary files left behind: %v", matches)
	}
}

func TestFlushFailureKeepsEntry(t *testing.T) {
	c := New[entry](filepath.Join(t.TempDir(), "missing", "cache.json"))
	if err := c.Put("abc", entry{Label: "sad"}); err == nil {
		t.Fatal("expected flush error for missing directory")
	}
	if _, ok := c.Get("abc"); !ok {
		t.Fatal("entry dropped after failed flush")
	}
}

func TestMemoryCacheNeverWrites(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	c := NewMemory[entry]()
	if err := c.Put("abc", entry{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 0 {
		t.Fatalf("memory cache wrote %d files", len(files))
	}
}

func TestDoComputesOnce(t *testing.T) {
	c := New[entry](filepath.Join(t.TempDir(), "cache.json"))
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (entry, error) {
		calls.Add(1)
		<-release
		return entry{"neutral", 0.5}, nil
	}

	var wg sync.WaitGroup
	results := make([]entry, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := c.Do("same", compute)
			if err != nil {
				t.Errorf("Do: %v", err)
			}
			results[i] = v
		}(i)
	}
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("compute ran %d times, want 1", n)
	}
	for i, r := range results {
		if r.Label != "neutral" {
			t.Fatalf("result %d = %+v", i, r)
		}
	}
	if _, hit, _ := c.Do("same", compute); !hit {
		t.Fatal("second Do should be a cache hit")
	}
}
