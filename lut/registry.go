package lut

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// importNamespace scopes the name-based UUIDs of imported tables.
var importNamespace = uuid.MustParse("8c4f3e0a-2b7d-5f61-9a0e-4d1c6b2f7e93")

// Loader lazily fetches imported tables that are not yet in memory, for
// example from an asset store. It returns ErrNotFound for unknown ids.
type Loader interface {
	LoadLUT(ctx context.Context, id string) (*Asset, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, id string) (*Asset, error)

// LoadLUT calls f.
func (f LoaderFunc) LoadLUT(ctx context.Context, id string) (*Asset, error) {
	return f(ctx, id)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLoader installs a lazy loader for ids the registry does not hold.
func WithLoader(l Loader) Option {
	return func(r *Registry) { r.loader = l }
}

// WithClock overrides the clock used for CreatedAt on imports.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Registry resolves table ids to assets. Built-in tables are generated on
// first use. A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	assets map[string]*Asset
	styles map[string]StockStyle
	loader Loader
	now    func() time.Time
}

// NewRegistry returns a registry seeded with the identity table and the
// stock styles.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		assets: make(map[string]*Asset),
		styles: make(map[string]StockStyle, len(StockStyles)),
		now:    time.Now,
	}
	r.assets[IdentityID] = builtinAsset(IdentityID, "Identity", MinSize, Identity(MinSize))
	for _, s := range StockStyles {
		r.styles[s.ID] = s
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the asset with the given id: built-ins first, then imported
// tables, then the loader.
func (r *Registry) Get(ctx context.Context, id string) (*Asset, error) {
	r.mu.RLock()
	a, ok := r.assets[id]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	if style, ok := r.styles[id]; ok {
		r.mu.Lock()
		defer r.mu.Unlock()
		if a, ok := r.assets[id]; ok {
			return a, nil
		}
		a := builtinAsset(style.ID, style.Name, builtinSize, style.Generate(builtinSize))
		r.assets[id] = a
		return a, nil
	}

	if r.loader == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	loaded, err := r.loader.LoadLUT(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load lut %q: %w", id, err)
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	if loaded.ID != id {
		return nil, fmt.Errorf("%w: loader returned id %q for %q", ErrInvalid, loaded.ID, id)
	}
	r.mu.Lock()
	r.assets[id] = loaded
	r.mu.Unlock()
	return loaded, nil
}

// Import parses a .cube stream, derives a content-addressed id and a display
// name and registers the asset. filename is used for the name when the file
// has no TITLE. Nothing is registered when parsing or validation fails.
func (r *Registry) Import(filename string, src io.Reader) (*Asset, error) {
	a, err := ParseCube(src)
	if err != nil {
		return nil, err
	}
	a.ID = "lut-" + contentID(a).String()
	if a.Name == "" {
		a.Name = displayName(filename)
	}
	a.Provenance = ProvenanceImported
	a.CreatedAt = r.now().UTC()
	if err := r.Register(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Register validates a and adds it to the registry, replacing any imported
// asset with the same id. Built-in ids cannot be replaced.
func (r *Registry) Register(a *Asset) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, ok := r.styles[a.ID]; ok || a.ID == IdentityID {
		return fmt.Errorf("%w: id %q is reserved", ErrInvalid, a.ID)
	}
	r.mu.Lock()
	r.assets[a.ID] = a
	r.mu.Unlock()
	return nil
}

// IDs returns the ids of every built-in and registered table, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.assets)+len(r.styles))
	for id := range r.assets {
		ids = append(ids, id)
	}
	for id := range r.styles {
		if _, ok := r.assets[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// contentID hashes the lattice size and samples into a name-based UUID.
func contentID(a *Asset) uuid.UUID {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint32(a.Size))
	_ = binary.Write(&buf, binary.LittleEndian, a.Data)
	return uuid.NewSHA1(importNamespace, buf.Bytes())
}

// displayName turns "kodak_portra-400.cube" into "Kodak Portra 400".
func displayName(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(stem)
	stem = strings.Join(strings.Fields(stem), " ")
	if stem == "" {
		return "Untitled"
	}
	return cases.Title(language.English).String(stem)
}
