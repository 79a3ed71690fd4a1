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

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carbonfmt/carbon/archive"
	"github.com/carbonfmt/carbon/codec"
)

func dumpCmd() *cobra.Command {
	var compressor string
	cmd := &cobra.Command{
		Use:   "dump <archive.carbon>",
		Short: "decode an archive and print it as a tree, without a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec.Require(compressor)
			if err != nil {
				return err
			}
			return runDump(args[0], c)
		},
	}
	cmd.Flags().StringVar(&compressor, "compressor", "none", "codec to fall back to if the string table's own flag bit is unrecognized")
	return cmd
}

func runDump(path string, fallback codec.Codec) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	hdr, err := archive.ReadArchiveHeader(data)
	if err != nil {
		return err
	}
	logf("%s: version %d, root at %d, string-id index at %d", path, hdr.Version, hdr.RootObjectOffset, hdr.StringIDToOffsetIndexOffset)

	root, err := archive.Walk(data, fallback)
	if err != nil {
		return err
	}
	printTree(root, 0)
	return nil
}

func printTree(p *archive.Printed, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, k := range p.NullKeys {
		fmt.Printf("%s%s: null\n", pad, k)
	}
	for i, k := range p.NullArrayKeys {
		fmt.Printf("%s%s: null[%d]\n", pad, k, p.NullArrayLengths[i])
	}
	for _, sc := range p.Scalars {
		for i, k := range sc.Keys {
			fmt.Printf("%s%s: %v\n", pad, k, sc.Values[i])
		}
	}
	for _, ac := range p.Arrays {
		for i, k := range ac.Keys {
			fmt.Printf("%s%s: %v\n", pad, k, ac.Values[i])
		}
	}
	for i, k := range p.ObjectKeys {
		fmt.Printf("%s%s:\n", pad, k)
		printTree(p.ObjectVals[i], indent+1)
	}
	for _, g := range p.ObjectArrayGroups {
		fmt.Printf("%s%s: [\n", pad, g.OuterKey)
		for _, col := range g.Columns {
			fmt.Printf("%s  %s (%s):\n", pad, col.NestedKey, col.NestedType)
			for _, objs := range col.Objects {
				for _, o := range objs {
					printTree(o, indent+2)
				}
			}
		}
		fmt.Printf("%s]\n", pad)
	}
}
