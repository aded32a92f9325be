// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command atfdump is a thin inspection tool over ATF v2 sessions and
// threads, built on the reader package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "atfdump",
		Short: "Inspect ATF v2 trace sessions and threads",
	}

	root.AddCommand(newManifestCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newDetailCmd())
	root.AddCommand(newMergeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
