package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFileSetShadowing(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.AddVirtual("Tebex.cs", []byte("class A {}"))
	id2 := fs.AddVirtual("Tebex.cs", []byte("class B {}"))
	if id1 != 0 || id2 != 1 {
		t.Fatalf("ids = %d, %d, want 0, 1", id1, id2)
	}

	f, ok := fs.Lookup("Tebex.cs")
	if !ok {
		t.Fatal("Lookup failed")
	}
	if string(f.Content) != "class B {}" {
		t.Fatalf("Lookup returned %q, want latest content", f.Content)
	}
	if string(fs.Get(id1).Content) != "class A {}" {
		t.Fatal("older file must stay addressable by id")
	}
	if fs.Get(id1).Hash == fs.Get(id2).Hash {
		t.Fatal("different content must hash differently")
	}
}

func TestLoadNormalises(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Adapter.cs")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("namespace X\r\n{\r\n}\r\n")...)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b, want BOM and CRLF bits", f.Flags)
	}
	if diff := cmp.Diff([]string{"namespace X\n", "{\n", "}\n"}, f.Lines()); diff != "" {
		t.Fatalf("Lines() mismatch (-want +got):\n%s", diff)
	}
	if f.Name != "Adapter.cs" {
		t.Fatalf("Name = %q", f.Name)
	}
}

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a\n"}},
		{"a\n\nb", []string{"a\n", "\n", "b"}},
		{"lone\rcr\n", []string{"lone\rcr\n"}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, SplitLines([]byte(tc.in))); diff != "" {
			t.Errorf("SplitLines(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestScanMatchesAllowList(t *testing.T) {
	dir := t.TempDir()
	// "Café" stored decomposed, as HFS+ would list it.
	decomposed := "Cafe\u0301.cs"
	for _, name := range []string{"Tebex.cs", decomposed, "Notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, skipped, err := Scan(dir, []string{"Tebex.cs", "Caf\u00e9.cs", "Missing.cs"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("found = %v, want 2 entries", found)
	}
	if found["Caf\u00e9.cs"] != filepath.Join(dir, decomposed) {
		t.Fatalf("NFC match failed: %v", found)
	}
	if diff := cmp.Diff([]string{"Notes.md"}, skipped); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, _, err := Scan(filepath.Join(t.TempDir(), "nope"), []string{"a"}); err == nil {
		t.Fatal("Scan of a missing directory must fail")
	}
}
