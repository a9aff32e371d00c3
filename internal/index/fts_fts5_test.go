//go:build sqlite_fts5

package index

import (
	"strings"
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM annotations_fts`).Scan(&count); err != nil {
		t.Fatalf("annotations_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	if err := db.InsertAnnotation(regionRow("fts", "f1", "v1", "This margin needs a powerful rewrite.")); err != nil {
		t.Fatalf("InsertAnnotation: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "fts" {
		t.Errorf("id = %q", results[0].ID)
	}
	if !strings.Contains(results[0].Snippet, "<b>powerful</b>") {
		t.Errorf("snippet = %q", results[0].Snippet)
	}
}

func TestFTS5_DeleteRemovesEntry(t *testing.T) {
	db := testDB(t)
	_ = db.InsertAnnotation(regionRow("gone", "f1", "v1", "ephemeral"))
	_ = db.DeleteAnnotation("gone")

	results, err := db.Search("ephemeral", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results after delete, got %d", len(results))
	}
}

func TestFTS5_ImportReplacesEntries(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceImport("b.yaml", "1", "f1", []AnnotationRow{regionRow("i1", "f1", "v1", "alpha")})
	_ = db.ReplaceImport("b.yaml", "2", "f1", []AnnotationRow{regionRow("i1", "f1", "v1", "beta")})

	if res, _ := db.Search("alpha", 10); len(res) != 0 {
		t.Errorf("stale fts entry: %+v", res)
	}
	if res, _ := db.Search("beta", 10); len(res) != 1 {
		t.Errorf("beta results = %+v", res)
	}
}
