// Package production provides the integrations around the engine:
// compiling stored definitions, persistence, event publishing, metrics and
// visualization.
package production

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/comalice/hsmx/internal/primitives"
)

// DefinitionStore is a directory of machine definitions, one file per
// machine ID, in YAML or JSON.
type DefinitionStore struct {
	dir string
}

// NewDefinitionStore creates a DefinitionStore, ensuring the directory exists.
func NewDefinitionStore(dir string) (*DefinitionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &DefinitionStore{dir: dir}, nil
}

// SaveJSON writes cfg to <id>.json.
func (p *DefinitionStore) SaveJSON(ctx context.Context, cfg primitives.MachineConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return p.write(ctx, cfg, ".json", data)
}

// LoadJSON reads and validates <id>.json.
func (p *DefinitionStore) LoadJSON(ctx context.Context, machineID string) (primitives.MachineConfig, error) {
	return p.load(ctx, machineID, ".json", func(data []byte, cfg *primitives.MachineConfig) error {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("json unmarshal: %w", err)
		}
		return nil
	})
}

// SaveYAML writes cfg to <id>.yaml.
func (p *DefinitionStore) SaveYAML(ctx context.Context, cfg primitives.MachineConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	return p.write(ctx, cfg, ".yaml", data)
}

// LoadYAML reads and validates <id>.yaml.
func (p *DefinitionStore) LoadYAML(ctx context.Context, machineID string) (primitives.MachineConfig, error) {
	return p.load(ctx, machineID, ".yaml", func(data []byte, cfg *primitives.MachineConfig) error {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("yaml unmarshal: %w", err)
		}
		return nil
	})
}

func (p *DefinitionStore) write(ctx context.Context, cfg primitives.MachineConfig, ext string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cfg.ID == "" {
		return errors.New("machine ID is required")
	}
	fn := filepath.Join(p.dir, cfg.ID+ext)
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *DefinitionStore) load(ctx context.Context, machineID, ext string, decode func([]byte, *primitives.MachineConfig) error) (primitives.MachineConfig, error) {
	if err := ctx.Err(); err != nil {
		return primitives.MachineConfig{}, err
	}
	fn := filepath.Join(p.dir, machineID+ext)
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return primitives.MachineConfig{}, fmt.Errorf("machine %q: %w", machineID, os.ErrNotExist)
		}
		return primitives.MachineConfig{}, fmt.Errorf("read %s: %w", fn, err)
	}

	var cfg primitives.MachineConfig
	if err := decode(data, &cfg); err != nil {
		return primitives.MachineConfig{}, err
	}
	cfg.ID = machineID // Ensure ID
	if err := cfg.Validate(); err != nil {
		return primitives.MachineConfig{}, fmt.Errorf("config validation after load: %w", err)
	}
	return cfg, nil
}
