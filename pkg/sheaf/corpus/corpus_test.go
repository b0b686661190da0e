package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/sheaf/pkg/sheaf/text"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestListTopics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Warfare", "doc_0.txt"), "x")
	writeFile(t, filepath.Join(root, "Cooking", "doc_0.txt"), "x")
	writeFile(t, filepath.Join(root, "README.txt"), "not a topic")

	topics, err := ListTopics(root, nil)
	if err != nil {
		t.Fatalf("ListTopics: %v", err)
	}
	if len(topics) != 2 || topics[0].Name != "Cooking" || topics[1].Name != "Warfare" {
		t.Errorf("topics = %+v", topics)
	}

	filtered, err := ListTopics(root, []string{"Warfare"})
	if err != nil {
		t.Fatalf("ListTopics: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Warfare" {
		t.Errorf("filtered = %+v", filtered)
	}

	if _, err := ListTopics(filepath.Join(root, "missing"), nil); err == nil {
		t.Error("missing root should fail")
	}
}

func TestReadDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "doc_0.txt"), "Bake a cake, then frost it. Fry an egg.")
	writeFile(t, filepath.Join(dir, "doc_1.html"),
		`<html><head><style>p{}</style><script>var x;</script></head><body><p>Launch the <b>missile</b>.</p></body></html>`)
	writeFile(t, filepath.Join(dir, ".hidden"), "ignored")

	r := NewReader(text.NewDefaultTokenizer())
	docs, err := r.ReadDocuments(dir)
	if err != nil {
		t.Fatalf("ReadDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d: %q", len(docs), docs)
	}
	if docs[0] != "bake cake frost. fry egg" {
		t.Errorf("doc 0 = %q", docs[0])
	}
	if docs[1] != "launch missile" {
		t.Errorf("doc 1 = %q", docs[1])
	}
}

func TestLoadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	writeFile(t, path, `{"topic":"Cooking","text":"Bake a cake."}
not json
{"text":"no topic"}

{"topic":"Warfare","text":"Train soldiers."}
{"topic":"Cooking","text":"Fry an egg."}
`)

	r := NewReader(text.NewDefaultTokenizer())
	topics, err := r.LoadJSONL(path, nil)
	if err != nil {
		t.Fatalf("LoadJSONL: %v", err)
	}
	if len(topics["Cooking"]) != 2 || topics["Cooking"][1] != "fry egg" {
		t.Errorf("Cooking = %q", topics["Cooking"])
	}
	if len(topics["Warfare"]) != 1 {
		t.Errorf("Warfare = %q", topics["Warfare"])
	}

	empty := filepath.Join(t.TempDir(), "empty.jsonl")
	writeFile(t, empty, "\n")
	if _, err := r.LoadJSONL(empty, nil); err == nil {
		t.Error("empty corpus should fail")
	}
}
