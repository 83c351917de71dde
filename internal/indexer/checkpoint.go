package indexer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// checkpointRecord is the on-disk resume marker. A run restarts from
// the block after it, so it is saved only once a batch is fully
// applied.
type checkpointRecord struct {
	Block   uint64 `json:"block"`
	SavedAt string `json:"saved_at"`
}

// Checkpoint persists the highest fully processed block to a file.
// A disabled checkpoint loads nothing and saves nothing.
type Checkpoint struct {
	path    string
	enabled bool
}

func NewCheckpoint(path string, enabled bool) *Checkpoint {
	return &Checkpoint{path: path, enabled: enabled}
}

// Load returns the recorded block and whether one exists.
func (c *Checkpoint) Load() (uint64, bool, error) {
	if !c.enabled {
		return 0, false, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var rec checkpointRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, false, fmt.Errorf("parse checkpoint %s: %w", c.path, err)
	}
	return rec.Block, true, nil
}

// Save records block as fully processed. The write goes through a
// temp file and a rename so a crash mid-write cannot corrupt the
// marker.
func (c *Checkpoint) Save(block uint64) error {
	if !c.enabled {
		return nil
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	data, err := json.Marshal(checkpointRecord{
		Block:   block,
		SavedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}
