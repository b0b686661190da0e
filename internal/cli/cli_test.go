package cli

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"Cooking", []string{"Cooking"}},
		{" Cooking, ,Warfare ", []string{"Cooking", "Warfare"}},
	}
	for _, tt := range tests {
		if got := SplitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := OpenStore(ctx, BackendFile, filepath.Join(dir, "sheaves"))
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	fs.Close()

	db, err := OpenStore(ctx, BackendSQLite, filepath.Join(dir, "sheaves.db"))
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	db.Close()

	if _, err := OpenStore(ctx, "redis", dir); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
