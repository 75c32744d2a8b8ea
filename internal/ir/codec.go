package ir

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
)

// Format is an on-disk encoding of a Module.
type Format uint8

const (
	FormatTOML Format = iota + 1
	FormatMsgpack
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, true
	case ".mp", ".msgpack":
		return FormatMsgpack, true
	}
	return 0, false
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (*Module, error) {
	var m Module
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown keys: %v", undecoded)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown unit format %d", format)
	}
	return &m, nil
}

// Encode serialises m in the given format.
func Encode(m *Module, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(m); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatMsgpack:
		return msgpack.Marshal(m)
	}
	return nil, fmt.Errorf("unknown unit format %d", format)
}

// Load reads and decodes a unit file. The raw bytes are returned for
// content-addressed caching.
func Load(path string) (*Module, []byte, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, nil, fmt.Errorf("%s: unsupported unit extension", path)
	}
	// #nosec G304 -- path comes from the user's unit list
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := Decode(data, format)
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, data, nil
}
