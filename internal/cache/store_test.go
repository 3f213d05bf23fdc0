// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gi-cli/gi/internal/catalog"
	"github.com/gi-cli/gi/internal/clock"
)

func newTestStore(t *testing.T) (*Store, *clock.Fake) {
	t.Helper()
	fc := clock.NewFake(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return New(t.TempDir(), WithClock(fc)), fc
}

func TestPutGet_RoundTrip(t *testing.T) {
	t.Parallel()

	s, fc := newTestStore(t)
	content := []byte("*.pyc\n__pycache__/\n")

	if err := s.Put("Python", content, "https://example.test/Python.gitignore"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, ok := s.Get("Python")
	if !ok {
		t.Fatal("expected record after Put")
	}
	if !bytes.Equal(rec.Content, content) {
		t.Errorf("Content = %q, want %q", rec.Content, content)
	}
	if !rec.FetchedAt.Equal(fc.Now()) {
		t.Errorf("FetchedAt = %v, want %v", rec.FetchedAt, fc.Now())
	}
	if rec.LocatorHash != hashHex([]byte("https://example.test/Python.gitignore")) {
		t.Errorf("unexpected LocatorHash %q", rec.LocatorHash)
	}
	if len(rec.ContentHash) != 64 {
		t.Errorf("ContentHash should be 32 hex-encoded bytes, got %q", rec.ContentHash)
	}
}

func TestPut_OverwritesRecord(t *testing.T) {
	t.Parallel()

	s, fc := newTestStore(t)
	if err := s.Put("Go", []byte("old\n"), "loc"); err != nil {
		t.Fatal(err)
	}
	fc.Advance(time.Hour)
	if err := s.Put("Go", []byte("new\n"), "loc"); err != nil {
		t.Fatal(err)
	}

	rec, ok := s.Get("Go")
	if !ok || string(rec.Content) != "new\n" {
		t.Fatalf("Get after overwrite = %q, %v", rec.Content, ok)
	}
	if !rec.FetchedAt.Equal(fc.Now()) {
		t.Errorf("FetchedAt not refreshed: %v", rec.FetchedAt)
	}
}

func TestGet_Absent(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	if _, ok := s.Get("Python"); ok {
		t.Error("expected absent record")
	}
}

func TestGet_CorruptionIsAbsent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(t *testing.T, s *Store, p string)
	}{
		{
			name: "garbage bytes",
			mutate: func(t *testing.T, _ *Store, p string) {
				t.Helper()
				if err := os.WriteFile(p, []byte("\xff\x00not cbor"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "truncated file",
			mutate: func(t *testing.T, _ *Store, p string) {
				t.Helper()
				data, err := os.ReadFile(p)
				if err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(p, data[:len(data)/2], 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "content tampered",
			mutate: func(t *testing.T, _ *Store, p string) {
				t.Helper()
				f := templateFile{
					Version:     recordVersion,
					Name:        "Python",
					Content:     []byte("tampered\n"),
					FetchedAt:   time.Now(),
					ContentHash: hashHex([]byte("original\n")),
				}
				data, err := encMode.Marshal(f)
				if err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(p, data, 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "future version",
			mutate: func(t *testing.T, _ *Store, p string) {
				t.Helper()
				f := templateFile{
					Version:     recordVersion + 1,
					Name:        "Python",
					Content:     []byte("x\n"),
					FetchedAt:   time.Now(),
					ContentHash: hashHex([]byte("x\n")),
				}
				data, err := encMode.Marshal(f)
				if err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(p, data, 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, _ := newTestStore(t)
			if err := s.Put("Python", []byte("original\n"), "loc"); err != nil {
				t.Fatal(err)
			}
			p, err := s.templatePath("Python")
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(t, s, p)

			if _, ok := s.Get("Python"); ok {
				t.Error("corrupt record must be reported as absent")
			}
		})
	}
}

func TestIsStale(t *testing.T) {
	t.Parallel()

	s, fc := newTestStore(t)
	fetched := fc.Now()
	ttl := 24 * time.Hour

	if s.IsStale(fetched, ttl) {
		t.Error("fresh record reported stale")
	}
	fc.Advance(ttl - time.Second)
	if s.IsStale(fetched, ttl) {
		t.Error("record just under ttl reported stale")
	}
	fc.Advance(time.Second)
	if !s.IsStale(fetched, ttl) {
		t.Error("record at exactly ttl must be stale")
	}
}

func TestNestedNames(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	if err := s.Put("Global/macOS", []byte(".DS_Store\n"), "loc"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "templates", "Global", "macOS.cbor")); err != nil {
		t.Errorf("expected nested record file: %v", err)
	}
	if rec, ok := s.Get("Global/macOS"); !ok || string(rec.Content) != ".DS_Store\n" {
		t.Errorf("Get(Global/macOS) = %q, %v", rec.Content, ok)
	}
}

func TestReservedNamesEscaped(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	for _, name := range []string{"Global/Con", "_Con"} {
		if err := s.Put(name, []byte(name+"\n"), "loc"); err != nil {
			t.Fatalf("Put(%q): %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "templates", "Global", "_Con.cbor")); err != nil {
		t.Errorf("expected escaped record file: %v", err)
	}
	for _, name := range []string{"Global/Con", "_Con"} {
		if rec, ok := s.Get(name); !ok || string(rec.Content) != name+"\n" {
			t.Errorf("Get(%q) = %q, %v", name, rec.Content, ok)
		}
	}

	entries, err := s.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "Global/Con" || entries[1].Name != "_Con" {
		t.Errorf("Entries() = %+v", entries)
	}
}

func TestInvalidNames(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	for _, name := range []string{"", "../escape", "/abs", "a//b", "Global/..", `C:\x`, "./x"} {
		if err := s.Put(name, []byte("x"), "loc"); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidName", name, err)
		}
		if _, ok := s.Get(name); ok {
			t.Errorf("Get(%q) should be absent", name)
		}
	}
}

func TestCatalog_RoundTrip(t *testing.T) {
	t.Parallel()

	s, fc := newTestStore(t)
	if _, ok := s.GetCatalog(); ok {
		t.Fatal("expected no cached catalog")
	}

	cat := catalog.New([]catalog.Entry{
		{Name: "Go", Locator: "https://example.test/Go.gitignore", Category: catalog.CategoryLanguage},
		{Name: "Global/macOS", Locator: "https://example.test/Global/macOS.gitignore", Category: catalog.CategoryGlobal},
	})
	if err := s.PutCatalog(cat, "github/gitignore (HEAD)"); err != nil {
		t.Fatalf("PutCatalog: %v", err)
	}

	got, ok := s.GetCatalog()
	if !ok {
		t.Fatal("expected cached catalog")
	}
	if got.Catalog.Len() != 2 {
		t.Errorf("cached catalog has %d entries, want 2", got.Catalog.Len())
	}
	if e, ok := got.Catalog.Lookup("Global/macOS"); !ok || e.Category != catalog.CategoryGlobal {
		t.Errorf("Lookup(Global/macOS) = %+v, %v", e, ok)
	}
	if got.Source != "github/gitignore (HEAD)" {
		t.Errorf("Source = %q", got.Source)
	}
	if !got.FetchedAt.Equal(fc.Now()) {
		t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, fc.Now())
	}
}

func TestCatalog_CorruptionIsAbsent(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), indexFileName), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.GetCatalog(); ok {
		t.Error("corrupt catalog must be reported as absent")
	}
}

func TestEntriesAndClear(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	entries, err := s.Entries()
	if err != nil {
		t.Fatalf("Entries on empty cache: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}

	for _, name := range []string{"Python", "Global/Vim", "Go"} {
		if err := s.Put(name, []byte(name+"\n"), "loc"); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.PutCatalog(catalog.New(nil), "src"); err != nil {
		t.Fatal(err)
	}

	entries, err = s.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	want := []string{"Global/Vim", "Go", "Python"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Name != want[i] {
			t.Errorf("entry[%d] = %q, want %q", i, e.Name, want[i])
		}
		if e.Size != len(want[i])+1 {
			t.Errorf("entry[%d] size = %d", i, e.Size)
		}
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := s.Get("Python"); ok {
		t.Error("record survived Clear")
	}
	if _, ok := s.GetCatalog(); ok {
		t.Error("catalog survived Clear")
	}
}

func TestConcurrentPutGet_NoTornReads(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writers := []*Store{New(dir), New(dir)}
	reader := New(dir)

	payload := func(i int) []byte {
		return bytes.Repeat([]byte(fmt.Sprintf("rule-%d\n", i)), 2000)
	}

	var wg sync.WaitGroup
	for w, s := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 20 {
				if err := s.Put("Big", payload(w*100+i), "loc"); err != nil {
					t.Errorf("Put: %v", err)
					return
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			if _, ok := reader.Get("Big"); !ok {
				t.Error("expected final record to be readable")
			}
			return
		default:
		}
		rec, ok := reader.Get("Big")
		if !ok {
			continue
		}
		// Every observed record must be one complete payload.
		first := bytes.SplitN(rec.Content, []byte("\n"), 2)[0]
		if !bytes.Equal(rec.Content, bytes.Repeat(append(first, '\n'), 2000)) {
			t.Fatal("observed a torn record")
		}
	}
}
