package memory

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestPersistenceRequiresInitialization(t *testing.T) {
	p := NewPersistence()

	if _, err := p.LoadLongTermMemory(); !IsKind(err, KindStorage) {
		t.Fatalf("load before init: got %v, want storage error", err)
	}
	if err := p.SaveLongTermMemory(nil); !IsKind(err, KindStorage) {
		t.Fatalf("save before init: got %v, want storage error", err)
	}
}

func TestPersistenceInitializeRejectsNilConfig(t *testing.T) {
	p := NewPersistence()
	if err := p.Initialize(nil); !IsKind(err, KindStorage) {
		t.Fatalf("got %v, want storage error", err)
	}
}

func TestPersistenceMissingFileLoadsEmpty(t *testing.T) {
	p := NewPersistence()
	if err := p.Initialize(tempConfig(t)); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	items, err := p.LoadLongTermMemory()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("got %v, want empty slice", items)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	p := NewPersistence()
	if err := p.Initialize(tempConfig(t)); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	saved := []*MemoryItem{
		seedItem("id-1", "open the budget spreadsheet", 0.8),
		seedItem("id-2", "draft reply to vendor", 0.4),
	}
	if err := p.SaveLongTermMemory(saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := p.LoadLongTermMemory()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d items, want 2", len(loaded))
	}

	// Compare in wire form so time encoding differences can't bite.
	want, _ := json.Marshal(saved)
	got, _ := json.Marshal(loaded)
	if !bytes.Equal(want, got) {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestPersistenceSaveNilWritesEmptyArray(t *testing.T) {
	p := NewPersistence()
	if err := p.Initialize(tempConfig(t)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := p.SaveLongTermMemory(nil); err != nil {
		t.Fatalf("save: %v", err)
	}

	items, err := p.LoadLongTermMemory()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("got %d items, want 0", len(items))
	}
}

func TestPersistenceCorruptFileIsStorageError(t *testing.T) {
	cfg := tempConfig(t)
	p := NewPersistence()
	if err := p.Initialize(cfg); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	for _, bad := range []string{"{not json", `{"items": []}`, `"just a string"`} {
		if err := os.WriteFile(p.FilePath(), []byte(bad), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		if _, err := p.LoadLongTermMemory(); !IsKind(err, KindStorage) {
			t.Fatalf("corrupt %q: got %v, want storage error", bad, err)
		}
	}
}

func TestPersistenceBackupBeforeOverwrite(t *testing.T) {
	cfg := tempConfig(t)
	p := NewPersistence()
	if err := p.Initialize(cfg); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	backup := p.FilePath() + ".backup"

	// First save: nothing to back up yet.
	if err := p.SaveLongTermMemory([]*MemoryItem{seedItem("id-1", "first", 0.5)}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := os.Stat(backup); !os.IsNotExist(err) {
		t.Fatalf("backup should not exist after first save: %v", err)
	}

	// Second save: previous contents must land in the backup.
	if err := p.SaveLongTermMemory([]*MemoryItem{seedItem("id-2", "second", 0.5)}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	data, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	var items []*MemoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("parse backup: %v", err)
	}
	if len(items) != 1 || items[0].ID != "id-1" {
		t.Fatalf("backup holds %v, want the first save", items)
	}
}

func TestPersistenceInitializeIsIdempotent(t *testing.T) {
	cfg := tempConfig(t)
	p := NewPersistence()
	if err := p.Initialize(cfg); err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	first := p.FilePath()

	other := tempConfig(t)
	if err := p.Initialize(other); err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	if p.FilePath() != first {
		t.Fatalf("path changed on re-init: %s != %s", p.FilePath(), first)
	}
	if filepath.Dir(first) != filepath.Join(string(cfg), "memory") {
		t.Fatalf("unexpected storage dir: %s", filepath.Dir(first))
	}
}
