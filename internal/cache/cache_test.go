package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "nested", "cache"), ttl, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	c := newCache(t, time.Hour)
	if !c.Enabled() {
		t.Error("cache should be enabled")
	}
	if _, err := os.Stat(c.dir); err != nil {
		t.Errorf("New() should create the cache directory: %v", err)
	}

	disabled, err := New("", 0, false)
	if err != nil {
		t.Fatalf("New() error for disabled cache: %v", err)
	}
	if disabled.Enabled() {
		t.Error("cache should be disabled")
	}
	if err := disabled.Set("k", []byte(`{}`)); err != nil {
		t.Errorf("Set() on disabled cache = %v", err)
	}
	if _, ok := disabled.Get("k"); ok {
		t.Error("disabled cache must always miss")
	}
}

func TestSetAndGet(t *testing.T) {
	c := newCache(t, time.Hour)
	data := []byte(`{
  "diagram": "graph TB\n  A --> B\n",
  "recommendation": "each targeting complexity <10"
}`)

	if err := c.Set("abc", data); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, ok := c.Get("abc")
	if !ok {
		t.Fatal("Get() missed an entry that was just written")
	}

	var want, have map[string]string
	if err := json.Unmarshal(data, &want); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(got, &have); err != nil {
		t.Fatalf("cached data is not JSON: %v", err)
	}
	if have["diagram"] != want["diagram"] || have["recommendation"] != want["recommendation"] {
		t.Errorf("Get() = %v, want %v", have, want)
	}

	if _, ok := c.Get("other"); ok {
		t.Error("Get() hit for unknown key")
	}
}

func TestSet_InvalidJSON(t *testing.T) {
	c := newCache(t, time.Hour)
	if err := c.Set("k", []byte("not json")); err == nil {
		t.Error("Set() accepted invalid JSON")
	}
}

func TestGet_Expired(t *testing.T) {
	c := newCache(t, time.Millisecond)
	if err := c.Set("k", []byte(`[1,2,3]`)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Get() returned an expired entry")
	}
	if _, err := os.Stat(c.keyPath("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestGet_CorruptedEntry(t *testing.T) {
	c := newCache(t, time.Hour)
	if err := c.Set("k", []byte(`{"total":1}`)); err != nil {
		t.Fatal(err)
	}

	path := c.keyPath("k")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		t.Fatal(err)
	}
	entry.Data = json.RawMessage(`{"total":2}`)
	tampered, _ := json.Marshal(entry)
	if err := os.WriteFile(path, tampered, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("k"); ok {
		t.Error("Get() returned an entry whose checksum does not match")
	}
}

func TestFingerprint(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.go")
	b := filepath.Join(root, "sub", "b.go")
	if err := os.MkdirAll(filepath.Dir(b), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{a, b} {
		if err := os.WriteFile(f, []byte("package x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	first, err := Fingerprint(root, []string{a, b}, "threshold=15")
	if err != nil {
		t.Fatal(err)
	}
	reordered, _ := Fingerprint(root, []string{b, a}, "threshold=15")
	if first != reordered {
		t.Error("fingerprint must not depend on file order")
	}

	otherSettings, _ := Fingerprint(root, []string{a, b}, "threshold=20")
	if first == otherSettings {
		t.Error("fingerprint must change with settings")
	}

	if err := os.WriteFile(a, []byte("package x\n\nfunc F() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed, _ := Fingerprint(root, []string{a, b}, "threshold=15")
	if first == changed {
		t.Error("fingerprint must change when a file changes size")
	}

	fewer, _ := Fingerprint(root, []string{a}, "threshold=15")
	if fewer == changed {
		t.Error("fingerprint must change when files are removed")
	}

	if _, err := Fingerprint(root, []string{filepath.Join(root, "missing.go")}); err == nil {
		t.Error("Fingerprint() should fail for missing files")
	}
}

func TestChecksum(t *testing.T) {
	if Checksum([]byte("a")) == Checksum([]byte("b")) {
		t.Error("different data produced the same checksum")
	}
	if len(Checksum(nil)) != 64 {
		t.Errorf("Checksum() length = %d, want 64 hex chars", len(Checksum(nil)))
	}
}
