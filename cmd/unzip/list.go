// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/mjbarlow/deflatezip/zip"
)

func newListCommand() *cobra.Command {
	var include string

	cmd := &cobra.Command{
		Use:   "list <archive.zip>",
		Short: "list entries in a ZIP archive",
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
			for _, e := range c.Entries() {
				if include != "" {
					matched, err := doublestar.Match(include, e.Name())
					if err != nil {
						return fmt.Errorf("bad --include pattern: %w", err)
					}
					if !matched {
						continue
					}
				}
				kind := "-"
				if e.IsDirectory() {
					kind = "d"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %10d %s %s\n", kind, e.Size(), e.ModTime().Format("2006-01-02 15:04"), e.Name())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&include, "include", "", "only list entries matching this glob")
	return cmd
}
