package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/sheaf/pkg/sheaf/kernel"
	"github.com/cognicore/sheaf/pkg/sheaf/text"
)

// Topic is one training directory.
type Topic struct {
	Name string
	Dir  string
}

// ListTopics returns the sub-directories of root in name order. A
// non-empty filter keeps only the named topics.
func ListTopics(root string, filter []string) ([]Topic, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read corpus root %s: %w", root, err)
	}
	keep := make(map[string]struct{}, len(filter))
	for _, f := range filter {
		keep[f] = struct{}{}
	}

	var topics []Topic
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if len(keep) > 0 {
			if _, ok := keep[e.Name()]; !ok {
				continue
			}
		}
		topics = append(topics, Topic{Name: e.Name(), Dir: filepath.Join(root, e.Name())})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

// Reader turns raw documents into cleaned training paragraphs.
type Reader struct {
	Tokenizer *text.Tokenizer
}

// NewReader creates a reader that cleans with tok.
func NewReader(tok *text.Tokenizer) *Reader {
	return &Reader{Tokenizer: tok}
}

// ReadDocuments reads every regular file in dir, in name order, and
// returns one cleaned paragraph per file.
func (r *Reader) ReadDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read topic dir %s: %w", dir, err)
	}

	var docs []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		raw, err := readFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, r.Clean(raw))
	}
	return docs, nil
}

// Clean lowercases raw text, drops commas and reduces each sentence to its
// stopped tokens. Sentences are joined with ". " so a sentence splitter
// recovers them.
func (r *Reader) Clean(raw string) string {
	lowered := strings.ReplaceAll(text.Lower(raw), ",", " ")
	var sentences []string
	for _, s := range (kernel.SentenceSplitter{}).Split(lowered) {
		if cleaned := r.Tokenizer.Join(s); cleaned != "" {
			sentences = append(sentences, cleaned)
		}
	}
	return strings.Join(sentences, ". ")
}

func readFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return extractHTML(f)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// extractHTML keeps the text nodes of a page, skipping script and style.
func extractHTML(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(buf.String()), " "), nil
}
