// Copyright 2021 FerretDB Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package version provides information about the build.
package version

import (
	"runtime/debug"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/FerretDB/mongodbhandler/internal/util/debugbuild"
)

// Info provides details about the current build.
type Info struct {
	Version          string
	Commit           string
	Dirty            bool
	DebugBuild       bool
	BuildEnvironment map[string]string
}

// info is set once in init.
var info *Info

// Get returns current build's info.
//
// It returns a shared instance without any synchronization.
// If caller needs to modify the instance, it should make sure there is no concurrent accesses.
func Get() *Info {
	return info
}

func init() {
	info = fromBuildInfo(debug.ReadBuildInfo())
}

// fromBuildInfo returns Info for the given Go build information.
func fromBuildInfo(buildInfo *debug.BuildInfo, ok bool) *Info {
	res := &Info{
		Version:          "unknown",
		DebugBuild:       debugbuild.Enabled,
		BuildEnvironment: map[string]string{},
	}

	if !ok {
		return res
	}

	if v := buildInfo.Main.Version; v != "" {
		res.Version = v
	}

	for _, s := range buildInfo.Settings {
		res.BuildEnvironment[s.Key] = s.Value

		switch s.Key {
		case "vcs.revision":
			res.Commit = s.Value

		case "vcs.modified":
			res.Dirty, _ = strconv.ParseBool(s.Value)

		case "-race":
			if race, _ := strconv.ParseBool(s.Value); race {
				res.DebugBuild = true
			}

		case "-tags":
			if slices.Contains(strings.Split(s.Value, ","), "mongodbhandler_debug") {
				res.DebugBuild = true
			}
		}
	}

	return res
}
