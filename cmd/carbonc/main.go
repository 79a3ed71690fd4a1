// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// carbonc is the convenience CLI front-end for the archive format: it
// converts a JSON document into an archive file, dumps an archive back
// to a readable tree, and bakes a string-id index onto a committed
// archive file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dashv bool

func logf(f string, args ...interface{}) {
	if !dashv {
		return
	}
	if len(f) == 0 || f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

func exitf(f string, args ...interface{}) {
	if len(f) == 0 || f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func main() {
	root := &cobra.Command{
		Use:           "carbonc",
		Short:         "build and inspect carbon columnar archives",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&dashv, "verbose", "v", false, "log progress to stderr")

	root.AddCommand(buildCmd())
	root.AddCommand(dumpCmd())
	root.AddCommand(bakeIndexCmd())

	if err := root.Execute(); err != nil {
		exitf("%s", err)
	}
}
