package primitives

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
)

// ComputeVersion returns config.Version when set, otherwise a content hash
// of the definition. Equal definitions always hash to the same version.
func ComputeVersion(config *MachineConfig) (string, error) {
	if config.Version != "" {
		return config.Version, nil
	}
	data, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("encode machine config: %w", err)
	}
	return fmt.Sprintf("xxh-%016x", xxhash.Sum64(data)), nil
}
