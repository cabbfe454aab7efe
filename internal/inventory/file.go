package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nixlim/pantry-alerts/internal/alerts"
)

// FileSource reads inventory from a JSON array on every call, so edits to
// the file are picked up by the next check.
type FileSource struct {
	path   string
	logger *zap.Logger
}

func NewFileSource(path string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{path: path, logger: logger}
}

// Path returns the inventory file location.
func (f *FileSource) Path() string {
	return f.path
}

// Load returns the raw items. A missing file is an empty inventory.
func (f *FileSource) Load() ([]Item, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", f.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", f.path, err)
	}
	return items, nil
}

// Snapshots converts the file contents. Items with an unparsable date are
// passed through with no expiration and are ignored by the engine.
func (f *FileSource) Snapshots(ctx context.Context) ([]alerts.InventorySnapshot, error) {
	items, err := f.Load()
	if err != nil {
		return nil, err
	}

	out := make([]alerts.InventorySnapshot, 0, len(items))
	for _, it := range items {
		if it.ItemID == "" {
			f.logger.Warn("inventory_item_skipped", zap.String("name", it.Name), zap.String("reason", "missing item_id"))
			continue
		}
		snap := alerts.InventorySnapshot{
			ItemID:   it.ItemID,
			Name:     it.Name,
			Category: it.Category,
		}
		if it.ExpirationDate != "" {
			exp, err := ParseDate(it.ExpirationDate)
			if err != nil {
				f.logger.Warn("inventory_bad_expiration",
					zap.String("item_id", it.ItemID),
					zap.String("expiration_date", it.ExpirationDate),
					zap.Error(err),
				)
			} else {
				snap.ExpirationDate = &exp
			}
		}
		out = append(out, snap)
	}
	return out, nil
}

// Save writes items atomically, keeping the indentation of an existing file.
func (f *FileSource) Save(items []Item) error {
	indent := "  "
	if data, err := os.ReadFile(f.path); err == nil {
		indent = detectIndent(data)
	}

	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(items, "", indent)
	if err != nil {
		return fmt.Errorf("marshaling inventory: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return writeAtomic(f.path, data)
}

// writeAtomic writes data via a temp file in the same directory and renames
// it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".inventory-*.json.tmp")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("permission denied writing to %s", dir)
		}
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	_ = os.Chmod(tmpPath, mode)

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}
	tmpPath = ""
	return nil
}

// detectIndent returns the indentation of the first indented line, or two
// spaces when none is found.
func detectIndent(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if len(trimmed) < len(line) && len(trimmed) > 0 {
			return line[:len(line)-len(trimmed)]
		}
	}
	return "  "
}
