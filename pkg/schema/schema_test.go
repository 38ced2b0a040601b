package schema

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSchemaPairings(t *testing.T) {
	s := Default()

	if !s.PairAllowed("SNP", "Whole blood") {
		t.Fatal("SNP on whole blood should be allowed")
	}
	if s.PairAllowed("Protein", "Urine") {
		t.Fatal("Protein on urine is not a listed pairing")
	}
	if !s.TissueValid("Urine") {
		t.Fatal("Urine is a valid tissue in its own right")
	}
	if s.PairAllowed("Unknown", "Whole blood") {
		t.Fatal("unknown omics must not pair with anything")
	}
}

func TestDefaultSchemaDerivesVocabularies(t *testing.T) {
	s := Default()

	if len(s.Omics) != 8 {
		t.Fatalf("expected 8 omics types, got %d", len(s.Omics))
	}
	if len(s.Tissues) != 10 {
		t.Fatalf("expected 10 tissues, got %d", len(s.Tissues))
	}
	if !s.VisitValid("V1") || s.VisitValid("V9") {
		t.Fatal("visit vocabulary is wrong")
	}
	if !s.ProjectValid("PRISMUK") || s.ProjectValid("prismuk") {
		t.Fatal("project matching must be case sensitive")
	}
}

func TestPairsAreStable(t *testing.T) {
	s := Default()
	a := s.Pairs()
	b := s.Pairs()
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("expected stable non-empty pair listing, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pair order changed at %d: %v vs %v", i, a[i], b[i])
		}
	}
	if a[0].Omics != "Bulk Exome RNA-seq" {
		t.Fatalf("expected alphabetical omics order, got %q first", a[0].Omics)
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.ProjectValid("COREA") {
		t.Fatal("default schema should know COREA")
	}
}

// A broken override file must never leave the caller without a schema.
func TestLoadBadFileFallsBackToDefault(t *testing.T) {
	cases := map[string]string{
		"malformed.yaml":    "visits: [V1\nprojects",
		"inconsistent.yaml": "visits: [V1]\nprojects: [COREA]\nomics: [SNP]\ntissues: [Serum]\nomics_tissue:\n  SNP: [Plasma]\n",
		"empty.yaml":        "",
	}
	dir := t.TempDir()
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
		s, err := Load(path)
		if err == nil {
			t.Fatalf("%s: expected an error", name)
		}
		if s == nil {
			t.Fatalf("%s: expected the default schema alongside the error", name)
		}
		if !s.VisitValid("V1") || !s.ProjectValid("COREA") {
			t.Fatalf("%s: fallback schema is not the built-in default", name)
		}
	}

	s, err := Load(filepath.Join(dir, "does-not-exist.yaml"))
	if err == nil || s == nil || !s.ProjectValid("PRISM") {
		t.Fatalf("unreadable file should fall back to default, got (%v, %v)", s, err)
	}
}
