package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

const (
	memoryDirName    = "memory"
	longTermFileName = "long-term-memory.json"
	backupSuffix     = ".backup"
)

// Persistence owns the long-term tier's on-disk file. Working and
// short-term tiers are purely in-memory and never touch disk.
type Persistence struct {
	initialized bool
	path        string
}

// NewPersistence returns an uninitialized persistence layer.
func NewPersistence() *Persistence {
	return &Persistence{}
}

// Initialize resolves the storage path under the app-data directory and
// ensures the directory exists. Idempotent.
func (p *Persistence) Initialize(cfg Config) error {
	if p.initialized {
		return nil
	}
	if cfg == nil {
		return &Error{Kind: KindStorage, Message: "persistence requires a config collaborator"}
	}
	dir := filepath.Join(cfg.AppDataPath(), memoryDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Kind: KindStorage, Message: "create memory directory", Cause: err}
	}
	p.path = filepath.Join(dir, longTermFileName)
	p.initialized = true
	return nil
}

// FilePath returns the resolved long-term memory file path.
func (p *Persistence) FilePath() string { return p.path }

// LoadLongTermMemory reads the persisted long-term tier. A missing file
// is the expected first-run state and loads as empty; malformed or
// non-array JSON is a storage error — silently discarding the user's
// memory store would be worse than surfacing the problem.
func (p *Persistence) LoadLongTermMemory() ([]*MemoryItem, error) {
	if !p.initialized {
		return nil, &Error{Kind: KindStorage, Message: "persistence used before initialization"}
	}

	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return []*MemoryItem{}, nil
	}
	if err != nil {
		return nil, (&Error{Kind: KindStorage, Message: "read long-term memory", Cause: err}).With("path", p.path)
	}

	var items []*MemoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, (&Error{Kind: KindStorage, Message: "parse long-term memory", Cause: err}).With("path", p.path)
	}
	if items == nil {
		items = []*MemoryItem{}
	}
	return items, nil
}

// SaveLongTermMemory writes a full pretty-printed replacement of the
// long-term file, copying the previous contents to <file>.backup first.
// The backup is best-effort — a failed copy is logged, not fatal — but
// the write itself must succeed: long-term memory is the only durable
// copy, and the backup protects it against a corrupt overwrite.
func (p *Persistence) SaveLongTermMemory(items []*MemoryItem) error {
	if !p.initialized {
		return &Error{Kind: KindStorage, Message: "persistence used before initialization"}
	}
	if items == nil {
		items = []*MemoryItem{}
	}

	if _, err := os.Stat(p.path); err == nil {
		if err := copyFile(p.path, p.path+backupSuffix); err != nil {
			log.Printf("persistence: backup of %s failed: %v", p.path, err)
		}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return &Error{Kind: KindStorage, Message: "encode long-term memory", Cause: err}
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return (&Error{Kind: KindStorage, Message: "write long-term memory", Cause: err}).With("path", p.path)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return out.Close()
}
