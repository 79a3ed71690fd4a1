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

	"github.com/spf13/cobra"

	"github.com/carbonfmt/carbon/archive"
	"github.com/carbonfmt/carbon/carbonjson"
	"github.com/carbonfmt/carbon/codec"
	"github.com/carbonfmt/carbon/columndoc"
	"github.com/carbonfmt/carbon/dict"
	"github.com/carbonfmt/carbon/strindex"
)

type buildFlags struct {
	config            string
	compressor        string
	dicType           string
	asyncThreads      int
	readOptimized     bool
	bakeStringIDIndex bool
}

func buildCmd() *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build <input.json> <output.carbon>",
		Short: "convert a JSON document into a carbon archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], args[1], flags)
		},
	}
	cmd.Flags().StringVar(&flags.config, "config", "", "optional YAML/JSON file supplying defaults for the other flags")
	cmd.Flags().StringVar(&flags.compressor, "compressor", "none", "string-table codec: none, huffman, or zstd")
	cmd.Flags().StringVar(&flags.dicType, "dic-type", "sync", "dictionary implementation: sync or async")
	cmd.Flags().IntVar(&flags.asyncThreads, "async-threads", 4, "partition count for --dic-type async")
	cmd.Flags().BoolVar(&flags.readOptimized, "read-optimized", false, "run the sort pass (C5) before serializing")
	cmd.Flags().BoolVar(&flags.bakeStringIDIndex, "bake-string-id-index", false, "append a string-id -> offset index (C7) after building")
	return cmd
}

// applyConfig layers a --config file's values under flags the caller
// didn't set explicitly on the command line, which always win (spec
// §6's ambient-stack expansion: "layered under explicit flags, which
// take precedence").
func applyConfig(cmd *cobra.Command, flags *buildFlags) error {
	if flags.config == "" {
		return nil
	}
	cfg, err := loadBuildConfig(flags.config)
	if err != nil {
		return fmt.Errorf("reading --config %s: %w", flags.config, err)
	}
	if cfg.Compressor != "" && !cmd.Flags().Changed("compressor") {
		flags.compressor = cfg.Compressor
	}
	if cfg.DicType != "" && !cmd.Flags().Changed("dic-type") {
		flags.dicType = cfg.DicType
	}
	if cfg.AsyncThreads != 0 && !cmd.Flags().Changed("async-threads") {
		flags.asyncThreads = cfg.AsyncThreads
	}
	if cfg.ReadOptimized && !cmd.Flags().Changed("read-optimized") {
		flags.readOptimized = true
	}
	if cfg.BakeStringIDIndex && !cmd.Flags().Changed("bake-string-id-index") {
		flags.bakeStringIDIndex = true
	}
	return nil
}

func runBuild(cmd *cobra.Command, inPath, outPath string, flags *buildFlags) error {
	if err := applyConfig(cmd, flags); err != nil {
		return err
	}

	c, err := codec.Require(flags.compressor)
	if err != nil {
		return err
	}

	var d dict.Dictionary
	switch flags.dicType {
	case "sync":
		d = &dict.Sync{}
	case "async":
		d = dict.NewAsync(flags.asyncThreads)
	default:
		return fmt.Errorf("unknown --dic-type %q: want sync or async", flags.dicType)
	}
	logf("dictionary: %s codec=%s", flags.dicType, c.Name())

	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	o, err := carbonjson.Decode(in)
	if err != nil {
		return err
	}
	logf("parsed %s: %d top-level fields", inPath, len(o.Entries))

	if err := columndoc.Preregister(d, o); err != nil {
		return err
	}
	col, err := columndoc.Transform(d, o)
	if err != nil {
		return err
	}
	if flags.readOptimized {
		columndoc.Sort(d, col)
		logf("sorted columns for read-optimized layout")
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := archive.Build(out, d, col, c); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	logf("wrote %s", outPath)

	if flags.bakeStringIDIndex {
		if err := strindex.Bake(outPath, c); err != nil {
			return err
		}
		logf("baked string-id index onto %s", outPath)
	}
	return nil
}
