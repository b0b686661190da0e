package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Item is one line of a JSONL corpus.
type Item struct {
	Topic string `json:"topic"`
	Text  string `json:"text"`
}

// LoadJSONL reads a JSONL corpus and groups cleaned documents by topic.
// Malformed lines and lines without a topic are logged and skipped.
func (r *Reader) LoadJSONL(path string, log *slog.Logger) (map[string][]string, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	topics := make(map[string][]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			log.Warn("skipping malformed line", "path", path, "line", lineNo, "error", err)
			continue
		}
		if item.Topic == "" {
			log.Warn("skipping line without topic", "path", path, "line", lineNo)
			continue
		}
		topics[item.Topic] = append(topics[item.Topic], r.Clean(item.Text))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("no valid items found in %s", path)
	}
	return topics, nil
}
