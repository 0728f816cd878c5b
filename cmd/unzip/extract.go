// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/mjbarlow/deflatezip/internal/fsextract"
	"github.com/mjbarlow/deflatezip/zip"
)

func newExtractCommand() *cobra.Command {
	var include string
	var destDir string

	cmd := &cobra.Command{
		Use:   "extract <archive.zip>",
		Short: "extract entries from a ZIP archive to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := zip.OpenContainer(data)
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}

			var matcher func(string) bool
			if include != "" {
				matcher = func(name string) bool {
					ok, err := doublestar.Match(include, name)
					return err == nil && ok
				}
			}
			return fsextract.Extract(c, destDir, matcher)
		},
	}
	cmd.Flags().StringVar(&include, "include", "", "only extract entries matching this glob")
	cmd.Flags().StringVarP(&destDir, "output", "o", ".", "destination directory")
	return cmd
}
