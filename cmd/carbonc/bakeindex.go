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
	"github.com/spf13/cobra"

	"github.com/carbonfmt/carbon/codec"
	"github.com/carbonfmt/carbon/strindex"
)

func bakeIndexCmd() *cobra.Command {
	var compressor string
	cmd := &cobra.Command{
		Use:   "bake-index <archive.carbon>",
		Short: "append a string-id -> offset index to an already-built archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec.Require(compressor)
			if err != nil {
				return err
			}
			if err := strindex.Bake(args[0], c); err != nil {
				return err
			}
			logf("baked string-id index onto %s", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&compressor, "compressor", "none", "codec to fall back to if the string table's own flag bit is unrecognized")
	return cmd
}
