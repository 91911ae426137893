package production

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/comalice/hsmx/internal/primitives"
)

var (
	ErrNotFound = errors.New("version or machine not found")
	ErrExists   = errors.New("version already exists")
)

// VersionedConfig annotates a definition with its version.
type VersionedConfig struct {
	Config    primitives.MachineConfig `json:"config" yaml:"config"`
	Version   string                   `json:"version" yaml:"version"`
	Timestamp time.Time                `json:"timestamp" yaml:"timestamp"`
}

// Registry keeps every registered version of each machine definition in
// memory. Versions come from primitives.ComputeVersion.
type Registry struct {
	mu       sync.RWMutex
	machines map[string][]VersionedConfig // oldest first
	now      func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		machines: make(map[string][]VersionedConfig),
		now:      time.Now,
	}
}

// Register validates cfg and stores it under its computed version.
// Registering an identical definition twice returns ErrExists.
func (r *Registry) Register(ctx context.Context, cfg primitives.MachineConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	version, err := primitives.ComputeVersion(&cfg)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.machines[cfg.ID] {
		if v.Version == version {
			return version, ErrExists
		}
	}
	r.machines[cfg.ID] = append(r.machines[cfg.ID], VersionedConfig{
		Config:    cfg,
		Version:   version,
		Timestamp: r.now(),
	})
	return version, nil
}

// Latest returns the most recently registered version of machineID.
func (r *Registry) Latest(ctx context.Context, machineID string) (VersionedConfig, error) {
	if err := ctx.Err(); err != nil {
		return VersionedConfig{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions := r.machines[machineID]
	if len(versions) == 0 {
		return VersionedConfig{}, ErrNotFound
	}
	return versions[len(versions)-1], nil
}

// Version returns one specific version of machineID.
func (r *Registry) Version(ctx context.Context, machineID, version string) (VersionedConfig, error) {
	if err := ctx.Err(); err != nil {
		return VersionedConfig{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.machines[machineID] {
		if v.Version == version {
			return v, nil
		}
	}
	return VersionedConfig{}, ErrNotFound
}

// ListVersions returns versions for machineID, newest first.
func (r *Registry) ListVersions(ctx context.Context, machineID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions := r.machines[machineID]
	if len(versions) == 0 {
		return nil, ErrNotFound
	}
	out := make([]string, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		out = append(out, versions[i].Version)
	}
	return out, nil
}

// ListMachines returns all machine IDs, sorted.
func (r *Registry) ListMachines(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.machines))
	for id := range r.machines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
