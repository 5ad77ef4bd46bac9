package model

import "sync"

// Store is implemented by the document owning the fonts:
// it registers new stream objects and returns a stable reference to them.
type Store interface {
	AddCMap(cmap CMapStream) Reference
}

// MemoryStore is an in-memory Store, safe for concurrent use.
// References start at 1, in insertion order.
type MemoryStore struct {
	mu    sync.Mutex
	cmaps []CMapStream
}

func (st *MemoryStore) AddCMap(cmap CMapStream) Reference {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cmaps = append(st.cmaps, cmap)
	return Reference(len(st.cmaps))
}

// CMap returns the stream registered under `ref`.
func (st *MemoryStore) CMap(ref Reference) (CMapStream, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !ref.IsValid() || int(ref) > len(st.cmaps) {
		return CMapStream{}, false
	}
	return st.cmaps[ref-1], true
}

// Len returns the number of registered objects.
func (st *MemoryStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.cmaps)
}
