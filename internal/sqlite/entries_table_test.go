package sqlite

import (
	"errors"
	"testing"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

func entriesTableOf(t *testing.T, b *Backend) types.Table {
	t.Helper()
	tbl, err := b.GetTable(types.TableEntries)
	if err != nil {
		t.Fatalf("GetTable failed: %v", err)
	}
	return tbl
}

func TestEntriesSetAndGet(t *testing.T) {
	b := newAttachedBackend(t)
	tbl := entriesTableOf(t, b)

	entry := &types.Entry{
		TemplateName: "Wildlife",
		Name:         "Eurasian Wren",
		Tier:         "wild",
		Fields: map[string]any{
			"Scientific Name": "Troglodytes troglodytes",
			"Family":          "Troglodytidae",
			"Weather":         nil,
		},
	}
	id, err := tbl.Set("", entry)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if id == "" || entry.EntryID != id {
		t.Errorf("Set id = %q, entry id = %q", id, entry.EntryID)
	}

	got, err := tbl.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	hydrated := got.(*types.Entry)
	if hydrated.Name != "Eurasian Wren" || hydrated.Tier != "wild" {
		t.Errorf("hydrated = %+v", hydrated)
	}
	if hydrated.Fields["Scientific Name"] != "Troglodytes troglodytes" {
		t.Errorf("fields = %v", hydrated.Fields)
	}
	if v, ok := hydrated.Fields["Weather"]; !ok || v != nil {
		t.Errorf("nil absence marker not round-tripped: %v (%v)", v, ok)
	}
}

func TestEntriesSetRejectsInvalid(t *testing.T) {
	b := newAttachedBackend(t)
	tbl := entriesTableOf(t, b)

	if _, err := tbl.Set("", "not an entry"); err != types.ErrInvalidData {
		t.Errorf("wrong type: error = %v, want ErrInvalidData", err)
	}
	if _, err := tbl.Set("", &types.Entry{TemplateName: "Books"}); err != types.ErrInvalidData {
		t.Errorf("empty name: error = %v, want ErrInvalidData", err)
	}
	if _, err := tbl.Set("", &types.Entry{Name: "X"}); err != types.ErrInvalidData {
		t.Errorf("empty template: error = %v, want ErrInvalidData", err)
	}
}

func TestEntriesUpdate(t *testing.T) {
	b := newAttachedBackend(t)
	tbl := entriesTableOf(t, b)

	entry := &types.Entry{TemplateName: "Books", Name: "Dawn", Tier: "want to read"}
	id, err := tbl.Set("", entry)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry.Tier = "read"
	entry.SetField("Rating", int64(5))
	if _, err := tbl.Set(id, entry); err != nil {
		t.Fatalf("update Set failed: %v", err)
	}

	got, _ := tbl.Get(id)
	hydrated := got.(*types.Entry)
	if hydrated.Tier != "read" {
		t.Errorf("tier = %q after update", hydrated.Tier)
	}
	// JSON round-trip turns int64 into float64.
	if hydrated.Fields["Rating"] != float64(5) {
		t.Errorf("Rating = %v (%T)", hydrated.Fields["Rating"], hydrated.Fields["Rating"])
	}
}

func TestEntriesDeleteCascadesObservations(t *testing.T) {
	b := newAttachedBackend(t)
	entries := entriesTableOf(t, b)
	observations, err := b.GetTable(types.TableObservations)
	if err != nil {
		t.Fatalf("GetTable failed: %v", err)
	}

	id, err := entries.Set("", &types.Entry{TemplateName: "Travel", Name: "Reykjavik", Tier: "visited"})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	obsID, err := observations.Set("", &types.Observation{EntryID: id, Notes: "northern lights"})
	if err != nil {
		t.Fatalf("observation Set failed: %v", err)
	}

	if err := entries.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := observations.Get(obsID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("observation survived entry deletion: error = %v", err)
	}

	if err := entries.Delete(id); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("second Delete: error = %v, want ErrNotFound", err)
	}
}

func TestEntriesFetchFilter(t *testing.T) {
	b := newAttachedBackend(t)
	tbl := entriesTableOf(t, b)

	seed := []*types.Entry{
		{TemplateName: "Books", Name: "Dawn", Tier: "read"},
		{TemplateName: "Books", Name: "Imago", Tier: "want to read"},
		{TemplateName: "Travel", Name: "Kyoto", Tier: "visited"},
	}
	for _, e := range seed {
		if _, err := tbl.Set("", e); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	all, err := tbl.Fetch(nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Fetch(nil) = %d entries, want 3", len(all))
	}

	books, err := tbl.Fetch(map[string]any{"template_name": "Books"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(books) != 2 {
		t.Errorf("books = %d, want 2", len(books))
	}

	read, err := tbl.Fetch(map[string]any{"template_name": "Books", "tier": "read"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(read) != 1 || read[0].(*types.Entry).Name != "Dawn" {
		t.Errorf("read books = %v", read)
	}

	if _, err := tbl.Fetch(map[string]any{"color": "blue"}); !errors.Is(err, types.ErrInvalidData) {
		t.Errorf("unknown filter key: error = %v, want ErrInvalidData", err)
	}
}
