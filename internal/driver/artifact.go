package driver

import (
	"bufio"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"stackc/internal/codegen"
)

// WriteArtifact encodes art to path as msgpack.
func WriteArtifact(path string, art *codegen.Artifact) error {
	data, err := msgpack.Marshal(art)
	if err != nil {
		return fmt.Errorf("encode %s: %w", art.Module, err)
	}
	return os.WriteFile(path, data, 0o600)
}

// ReadArtifact decodes an artifact written by WriteArtifact.
func ReadArtifact(path string) (*codegen.Artifact, error) {
	// #nosec G304 -- path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var art codegen.Artifact
	if err := msgpack.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &art, nil
}

// WriteListing renders art's listing to path.
func WriteListing(path string, art *codegen.Artifact) (err error) {
	// #nosec G304 -- path is derived from the output directory
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	w := bufio.NewWriter(f)
	if err := art.WriteListing(w); err != nil {
		return err
	}
	return w.Flush()
}
