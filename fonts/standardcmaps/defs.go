// Package standardcmaps provides the predefined CMaps, addressed by name.
//
// The Identity-H and Identity-V CMaps are embedded. Other resources,
// such as the Adobe-Japan1-UCS2 ToUnicode CMap, may be registered from
// the files distributed by Adobe (https://github.com/adobe-type-tools/cmap-resources).
package standardcmaps

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/benoitkugler/fontmap/fonts/cmaps"
	"github.com/benoitkugler/fontmap/model"
)

//go:embed data/Identity-H data/Identity-V
var embedded embed.FS

// ErrUnknownCMap is returned when a name is not registered.
var ErrUnknownCMap = errors.New("unknown predefined cmap")

// Default is a registry containing the embedded CMaps.
var Default = NewRegistry()

type source func() ([]byte, error)

// Registry is a set of CMaps programs, parsed on first use.
// It is safe for concurrent use.
// It implements cmaps.Resolver, so that the CMaps it contains may
// refer to each other with `usecmap`.
type Registry struct {
	mu      sync.Mutex
	sources map[model.Name]source
	parsed  map[model.Name]cmaps.CMap
}

// NewRegistry returns a registry with the embedded CMaps.
func NewRegistry() *Registry {
	r := &Registry{
		sources: make(map[model.Name]source),
		parsed:  make(map[model.Name]cmaps.CMap),
	}
	if err := r.RegisterFS(embedded, "data"); err != nil {
		panic(err) // embedded content
	}
	return r
}

// Register adds (or replaces) the CMap program `name`.
func (r *Registry) Register(name model.Name, content []byte) {
	r.register(name, func() ([]byte, error) { return content, nil })
}

// RegisterFS registers all the files found in `dir`, using their file name
// as CMap name. The files are read on first use.
func (r *Registry) RegisterFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filePath := path.Join(dir, entry.Name())
		r.register(model.Name(entry.Name()), func() ([]byte, error) {
			return fs.ReadFile(fsys, filePath)
		})
	}
	return nil
}

func (r *Registry) register(name model.Name, src source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = src
	delete(r.parsed, name)
}

// Names returns the sorted registered names.
func (r *Registry) Names() []model.Name {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Name, 0, len(r.sources))
	for name := range r.sources {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CMap returns the parsed CMap `name`.
// The returned mapping is shared and must not be modified.
func (r *Registry) CMap(name model.Name) (cmaps.CMap, error) {
	return r.load(name, nil)
}

// Resolve implements cmaps.Resolver.
func (r *Registry) Resolve(name model.Name) (cmaps.Mapping, error) {
	cm, err := r.CMap(name)
	return cm.Mapping, err
}

// ToUnicode returns the predefined CMap mapping the CIDs of
// the given character collection to Unicode.
func (r *Registry) ToUnicode(info model.CIDSystemInfo) (cmaps.Mapping, error) {
	return r.Resolve(info.ToUnicodeCMapName())
}

// load parses the CMap `name`, out of the lock.
// `chain` is the list of CMaps being loaded, used to detect
// cyclic `usecmap`.
func (r *Registry) load(name model.Name, chain []model.Name) (cmaps.CMap, error) {
	for _, n := range chain {
		if n == name {
			return cmaps.CMap{}, fmt.Errorf("cyclic usecmap %s", name)
		}
	}

	r.mu.Lock()
	cm, ok := r.parsed[name]
	src, known := r.sources[name]
	r.mu.Unlock()
	if ok {
		return cm, nil
	}
	if !known {
		return cmaps.CMap{}, fmt.Errorf("%w: %s", ErrUnknownCMap, name)
	}

	content, err := src()
	if err != nil {
		return cmaps.CMap{}, fmt.Errorf("reading cmap %s: %s", name, err)
	}
	chain = append(chain[:len(chain):len(chain)], name)
	cm, err = cmaps.Parse(content, cmaps.ParseOptions{Resolver: chainResolver{registry: r, chain: chain}})
	if err != nil {
		return cmaps.CMap{}, fmt.Errorf("predefined cmap %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.parsed[name]; ok { // concurrent load
		return existing, nil
	}
	r.parsed[name] = cm
	return cm, nil
}

type chainResolver struct {
	registry *Registry
	chain    []model.Name
}

func (c chainResolver) Resolve(name model.Name) (cmaps.Mapping, error) {
	cm, err := c.registry.load(name, c.chain)
	return cm.Mapping, err
}
