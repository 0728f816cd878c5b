// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fsextract writes zip.Container entries out to a real
// filesystem: the filesystem-writing collaborator the core archive
// engine deliberately stays independent of.
package fsextract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mjbarlow/deflatezip/zip"
)

// Extract writes every entry in c to destDir, recreating directories
// as needed. include, if non-nil, is consulted per entry (by name) to
// decide whether to extract it; a false result skips the entry,
// directory entries included. Each extracted file's parent directories
// are created as needed.
func Extract(c *zip.Container, destDir string, include func(name string) bool) error {
	for _, e := range c.Entries() {
		name := e.Name()
		if name == "" {
			continue
		}
		if include != nil && !include(name) {
			continue
		}

		target := filepath.Join(destDir, filepath.FromSlash(name))
		if !withinDir(destDir, target) {
			return fmt.Errorf("fsextract: %s escapes destination directory", name)
		}

		if e.IsDirectory() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		slog.Debug("extracting", "name", name, "size", e.Size())
		data, err := e.Data()
		if err != nil {
			return fmt.Errorf("fsextract: %s: %w", name, err)
		}
		if err := os.WriteFile(target, data, e.Mode().Perm()); err != nil {
			return err
		}
		if !e.ModTime().IsZero() {
			if err := os.Chtimes(target, e.ModTime(), e.ModTime()); err != nil {
				return err
			}
		}
	}
	return nil
}

func withinDir(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel != ".." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
