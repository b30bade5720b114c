package favorites

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/kartica/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// memBackend is an in-memory storage.Provider.
type memBackend struct {
	data    map[string][]byte
	getErr  error
	putErr  error
	putHits int
}

func newMem() *memBackend { return &memBackend{data: map[string][]byte{}} }

func (m *memBackend) Get(key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotExist
	}
	return v, nil
}

func (m *memBackend) Put(key string, value []byte) error {
	m.putHits++
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func TestToggleAddsAndRemoves(t *testing.T) {
	s := NewSet("a")
	added := Toggle(s, "b")
	if !added.Has("b") || !added.Has("a") {
		t.Fatalf("toggle add = %v", added.IDs())
	}
	if s.Has("b") {
		t.Error("input set mutated")
	}
	removed := Toggle(added, "a")
	if removed.Has("a") {
		t.Errorf("toggle remove = %v", removed.IDs())
	}
}

func TestTogglePairIsIdentity(t *testing.T) {
	sets := []Set{NewSet(), NewSet("x"), NewSet("x", "y", "z")}
	for _, s := range sets {
		for _, id := range []string{"x", "q"} {
			if got := Toggle(Toggle(s, id), id); !got.Equal(s) {
				t.Errorf("toggle twice %v with %q = %v", s.IDs(), id, got.IDs())
			}
		}
	}
}

func TestToggleNilSet(t *testing.T) {
	var s Set
	got := Toggle(s, "a")
	if !got.Has("a") || got.Len() != 1 {
		t.Errorf("toggle on nil = %v", got.IDs())
	}
}

func TestEncodeSorted(t *testing.T) {
	data, err := Encode(NewSet("c", "a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["a","b","c"]` {
		t.Errorf("encode = %s", data)
	}
	empty, _ := Encode(NewSet())
	if string(empty) != `[]` {
		t.Errorf("empty encode = %s", empty)
	}
}

func TestHydrateMissingKey(t *testing.T) {
	st := NewStore(newMem(), "", quietLogger())
	if got := st.Hydrate(); got.Len() != 0 {
		t.Errorf("hydrate missing = %v", got.IDs())
	}
}

func TestHydrateCorruptJSON(t *testing.T) {
	mem := newMem()
	mem.data[DefaultKey] = []byte(`{not json`)
	st := NewStore(mem, "", quietLogger())
	if got := st.Hydrate(); got.Len() != 0 {
		t.Errorf("hydrate corrupt = %v", got.IDs())
	}

	mem.data[DefaultKey] = []byte(`{"a":1}`)
	if got := st.Hydrate(); got.Len() != 0 {
		t.Errorf("hydrate wrong shape = %v", got.IDs())
	}
}

func TestHydrateReadError(t *testing.T) {
	mem := newMem()
	mem.getErr = errors.New("disk on fire")
	st := NewStore(mem, "", quietLogger())
	if got := st.Hydrate(); got.Len() != 0 {
		t.Errorf("hydrate read error = %v", got.IDs())
	}
}

func TestRoundTrip(t *testing.T) {
	mem := newMem()
	st := NewStore(mem, "k", quietLogger())
	want := NewSet("greet-1", "custom-3", "food-2")
	if err := st.Persist(want); err != nil {
		t.Fatal(err)
	}
	if got := st.Hydrate(); !got.Equal(want) {
		t.Errorf("hydrate(persist(S)) = %v, want %v", got.IDs(), want.IDs())
	}

	before := string(mem.data["k"])
	if err := st.Persist(st.Hydrate()); err != nil {
		t.Fatal(err)
	}
	if after := string(mem.data["k"]); after != before {
		t.Errorf("persist(hydrate()) changed storage: %s -> %s", before, after)
	}
}

func TestPersistKeepsForeignOrder(t *testing.T) {
	mem := newMem()
	mem.data["k"] = []byte(`["food-2", "greet-1"]`)
	st := NewStore(mem, "k", quietLogger())

	if err := st.Persist(st.Hydrate()); err != nil {
		t.Fatal(err)
	}
	if got := string(mem.data["k"]); got != `["food-2", "greet-1"]` {
		t.Errorf("stored = %s, want original bytes", got)
	}
	if mem.putHits != 0 {
		t.Errorf("puts = %d, want 0", mem.putHits)
	}
}

func TestStoreTogglePersistsEveryChange(t *testing.T) {
	mem := newMem()
	st := NewStore(mem, "", quietLogger())
	st.Hydrate()

	if _, err := st.Toggle("a"); err != nil {
		t.Fatal(err)
	}
	if string(mem.data[DefaultKey]) != `["a"]` {
		t.Errorf("after add stored %s", mem.data[DefaultKey])
	}
	if _, err := st.Toggle("a"); err != nil {
		t.Fatal(err)
	}
	if string(mem.data[DefaultKey]) != `[]` {
		t.Errorf("after remove stored %s", mem.data[DefaultKey])
	}
	if mem.putHits != 2 {
		t.Errorf("puts = %d, want 2", mem.putHits)
	}
}

func TestStoreToggleWriteFailureKeepsSet(t *testing.T) {
	mem := newMem()
	mem.putErr = errors.New("read-only")
	st := NewStore(mem, "", quietLogger())
	got, err := st.Toggle("a")
	if err == nil {
		t.Fatal("expected persist error")
	}
	if !got.Has("a") || !st.Current().Has("a") {
		t.Error("in-memory set should still reflect the toggle")
	}
}

func TestStoreWithFSBackend(t *testing.T) {
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st := NewStore(fs, "", quietLogger())
	st.Hydrate()
	_, _ = st.Toggle("x")
	_, _ = st.Toggle("y")

	reopened := NewStore(fs, "", quietLogger())
	if got := reopened.Hydrate(); !got.Equal(NewSet("x", "y")) {
		t.Errorf("reopened = %v", got.IDs())
	}
}
