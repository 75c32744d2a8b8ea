package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"stackc/internal/ir"
)

// ExpandUnits resolves unit arguments relative to base. Plain paths must
// exist; glob patterns may match nothing. Directories contribute every unit
// file directly inside them. The result is sorted and deduplicated.
func ExpandUnits(base string, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, ok := ir.FormatOf(p); !ok {
			return
		}
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, pat := range patterns {
		if !filepath.IsAbs(pat) && base != "" {
			pat = filepath.Join(base, pat)
		}
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, fmt.Errorf("bad unit pattern %q: %w", pat, err)
		}
		if matches == nil && !hasMeta(pat) {
			return nil, fmt.Errorf("%s: no such unit", pat)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				if _, ok := ir.FormatOf(m); !ok {
					return nil, fmt.Errorf("%s: unsupported unit extension", m)
				}
				add(m)
				continue
			}
			entries, err := os.ReadDir(m)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				if !e.IsDir() {
					add(filepath.Join(m, e.Name()))
				}
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func hasMeta(p string) bool {
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '*', '?', '[':
			return true
		}
	}
	return false
}
