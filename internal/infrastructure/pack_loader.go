package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Victor-armando18/marketplace-rules/internal/interfaces"
)

// FilePackLoader loads versioned rule packs from JSON files on disk,
// named {version}_pack.json.
type FilePackLoader struct {
	Dir string
}

func NewFilePackLoader(dir string) interfaces.PackLoader {
	return &FilePackLoader{Dir: dir}
}

func (l *FilePackLoader) Load(ctx context.Context, version string) (*interfaces.PackDefinition, error) {
	path := filepath.Join(l.Dir, fmt.Sprintf("%s_pack.json", version))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pack file %s: %w", path, err)
	}

	var def interfaces.PackDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pack definition: %w", err)
	}

	return &def, nil
}
