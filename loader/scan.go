/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"

	"github.com/suparena/entitymeta/errors"
)

// Scanner finds descriptor files below a directory.
type Scanner struct {
	pattern string
}

// NewScanner returns a scanner selecting files whose slash-separated path
// relative to the scanned root matches pattern.
func NewScanner(pattern string) (*Scanner, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.NewValidationError("pattern", fmt.Sprintf("invalid descriptor pattern %q", pattern))
	}
	return &Scanner{pattern: pattern}, nil
}

// Scan returns the matching files below root, sorted. Hidden directories are
// skipped.
func (s *Scanner) Scan(ctx context.Context, root string) ([]string, error) {
	var (
		mu      sync.Mutex
		matches []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(s.pattern, filepath.ToSlash(rel)); ok {
			mu.Lock()
			matches = append(matches, p)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(matches)
	return matches, nil
}
