package hookstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestEnforceDisabled(t *testing.T) {
	st := newTestStore(t, Options{})
	for i := 0; i < 4; i++ {
		putString(t, st, "text/plain", "x")
	}
	for _, keep := range []int{0, -1} {
		result, err := st.Enforce(context.Background(), keep)
		if err != nil {
			t.Fatalf("enforce(%d): %v", keep, err)
		}
		if result.Deleted != 0 {
			t.Fatalf("enforce(%d) deleted %d records", keep, result.Deleted)
		}
	}
	if got := len(dirNames(t, st.Dir())); got != 8 {
		t.Fatalf("expected 8 files, got %d", got)
	}
}

func TestEnforceDeletesOldestWithBodies(t *testing.T) {
	st := newTestStore(t, Options{})
	oldest := putString(t, st, "text/plain", "1")
	putString(t, st, "text/plain", "2")
	newest := putString(t, st, "text/plain", "3")

	result, err := st.Enforce(context.Background(), 1)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if result.Kept != 1 || result.Deleted != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result %#v", result)
	}
	names := dirNames(t, st.Dir())
	if len(names) != 2 || names[0] != newest.ID+".body" || names[1] != newest.ID+".json" {
		t.Fatalf("unexpected files %v", names)
	}
	if _, err := os.Stat(filepath.Join(st.Dir(), oldest.BodyRef)); !os.IsNotExist(err) {
		t.Fatalf("expected oldest body removed, got %v", err)
	}
}

func TestEnforceRemovesCorruptStaleDocument(t *testing.T) {
	st := newTestStore(t, Options{})
	staleID := "20200101T000000Z-dddddddddddd"
	for name, data := range map[string]string{
		staleID + ".json":                        "{broken",
		staleID + ".body":                        "payload",
		"20200101T000001Z-eeeeeeeeeeee.json":     `{"body_ref":"custom-blob.bin"}`,
		"custom-blob.bin":                        "payload",
		"20200101T000002Z-ffffffffffff.json.tmp": "in flight",
	} {
		if err := os.WriteFile(filepath.Join(st.Dir(), name), []byte(data), 0o644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	kept := putString(t, st, "text/plain", "fresh")

	result, err := st.Enforce(context.Background(), 1)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if result.Deleted != 2 {
		t.Fatalf("expected 2 evictions, got %#v", result)
	}
	names := dirNames(t, st.Dir())
	want := []string{"20200101T000002Z-ffffffffffff.json.tmp", kept.ID + ".body", kept.ID + ".json"}
	if len(names) != len(want) {
		t.Fatalf("unexpected files %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected files %v", names)
		}
	}
}
