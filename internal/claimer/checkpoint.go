package claimer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"predictionBot/internal/model"
)

// Checkpoint tracks the last swept epoch of each requested range. Claim
// ranges are not monotonic, so progress of one range says nothing about
// another.
type Checkpoint interface {
	Load(ctx context.Context, r EpochRange) (model.Epoch, bool, error)
	Save(ctx context.Context, r EpochRange, epoch model.Epoch) error
}

type rangeCheckpoint struct {
	LastProcessedEpoch string `json:"last_processed_epoch"`
	UpdatedAt          string `json:"updated_at"`
}

type checkpointFile struct {
	Ranges map[string]rangeCheckpoint `json:"ranges"`
}

// FileCheckpoint persists checkpoints of all ranges in one JSON file.
type FileCheckpoint struct {
	path string
	mu   sync.Mutex
}

func NewFileCheckpoint(path string) *FileCheckpoint {
	return &FileCheckpoint{path: path}
}

func (c *FileCheckpoint) Load(_ context.Context, r EpochRange) (model.Epoch, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	file, err := c.read()
	if err != nil {
		return model.Epoch{}, false, err
	}
	cp, ok := file.Ranges[r.Key()]
	if !ok {
		return model.Epoch{}, false, nil
	}
	epoch, err := model.ParseEpoch(cp.LastProcessedEpoch)
	if err != nil {
		return model.Epoch{}, false, fmt.Errorf("parse checkpoint epoch: %w", err)
	}
	return epoch, true, nil
}

func (c *FileCheckpoint) Save(_ context.Context, r EpochRange, epoch model.Epoch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	file, err := c.read()
	if err != nil {
		return err
	}
	file.Ranges[r.Key()] = rangeCheckpoint{
		LastProcessedEpoch: epoch.String(),
		UpdatedAt:          time.Now().UTC().Format(time.RFC3339Nano),
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

func (c *FileCheckpoint) read() (checkpointFile, error) {
	file := checkpointFile{Ranges: map[string]rangeCheckpoint{}}

	stat, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return file, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return file, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return file, fmt.Errorf("read checkpoint: %w", err)
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse checkpoint: %w", err)
	}
	if file.Ranges == nil {
		file.Ranges = map[string]rangeCheckpoint{}
	}
	return file, nil
}

// StateStore is a named epoch checkpoint table, such as postgres.Store.
type StateStore interface {
	LoadState(ctx context.Context, name string) (model.Epoch, bool, error)
	SaveState(ctx context.Context, name string, epoch model.Epoch) error
}

// StoreCheckpoint keeps one row per range in a StateStore, named
// "<prefix>:<from>-<to>".
type StoreCheckpoint struct {
	store  StateStore
	prefix string
}

func NewStoreCheckpoint(store StateStore, prefix string) *StoreCheckpoint {
	if prefix == "" {
		prefix = "claim"
	}
	return &StoreCheckpoint{store: store, prefix: prefix}
}

func (c *StoreCheckpoint) Load(ctx context.Context, r EpochRange) (model.Epoch, bool, error) {
	return c.store.LoadState(ctx, c.name(r))
}

func (c *StoreCheckpoint) Save(ctx context.Context, r EpochRange, epoch model.Epoch) error {
	return c.store.SaveState(ctx, c.name(r), epoch)
}

func (c *StoreCheckpoint) name(r EpochRange) string {
	return c.prefix + ":" + r.Key()
}
