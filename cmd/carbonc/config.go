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
	"os"

	"sigs.k8s.io/yaml"
)

// buildConfig mirrors buildCmd's flags so a --config file (JSON or
// YAML; sigs.k8s.io/yaml accepts both the way db.DecodeDefinition does
// in the teacher) can set defaults that explicit flags still override.
type buildConfig struct {
	Compressor        string `json:"compressor"`
	DicType           string `json:"dicType"`
	AsyncThreads      int    `json:"asyncThreads"`
	ReadOptimized     bool   `json:"readOptimized"`
	BakeStringIDIndex bool   `json:"bakeStringIdIndex"`
}

func loadBuildConfig(path string) (buildConfig, error) {
	var c buildConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}
