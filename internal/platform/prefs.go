package platform

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
)

// Prefs is durable per-origin key-value preference storage. Implementations
// never surface failures: a failed read reports the key as absent and a
// failed write is dropped.
type Prefs interface {
	// Get returns the stored value and whether it was present.
	Get(key string) (string, bool)
	// Set stores a value best-effort.
	Set(key, value string)
}

// FilePrefs persists preferences as a single JSON document on disk.
type FilePrefs struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

// NewFilePrefs opens (or lazily creates) the preference file at path. An
// unreadable or corrupt file is treated as empty.
func NewFilePrefs(path string) *FilePrefs {
	p := &FilePrefs{
		path:   path,
		values: make(map[string]string),
	}
	if data, err := os.ReadFile(path); err == nil {
		var stored map[string]string
		if err := sonic.Unmarshal(data, &stored); err == nil {
			p.values = stored
		}
	}
	return p
}

func (p *FilePrefs) Get(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok
}

func (p *FilePrefs) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values[key] = value

	data, err := sonic.Marshal(p.values)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(p.path, data, 0o644)
}

// MemPrefs is an in-memory Prefs used by tests and as the fallback when no
// preference path is configured.
type MemPrefs struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemPrefs creates an empty in-memory preference store.
func NewMemPrefs() *MemPrefs {
	return &MemPrefs{values: make(map[string]string)}
}

func (p *MemPrefs) Get(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok
}

func (p *MemPrefs) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}
