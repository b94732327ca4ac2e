// Copyright 2025 Kadir Pekel
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

package sandbox

import (
	"fmt"
	"strconv"
	"strings"
)

// wrapCode implements spec.md §4.4 step 1: it wraps a PTC-generated
// snippet (written as if inside an async main() with `executor` in
// scope) into a complete Go program. The sandbox language here is Go
// itself (see SPEC_FULL.md §4.4): the snippet becomes the body of a
// `run` function, called from a `main` that constructs the Executor,
// recovers from panics, and emits a JSON error object to stdout on
// failure instead of letting the process crash uncaught.
func wrapCode(snippet, skillImplPath string) string {
	indented := indent(snippet, "\t")

	return fmt.Sprintf(`package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kadirpekel/agentcore/pkg/skill"
)

func main() {
	ctx := context.Background()
	registry := skill.New(%s, nil)
	executor := skill.NewExecutor(registry, nil)
	defer executor.Close()

	defer func() {
		if r := recover(); r != nil {
			out, _ := json.Marshal(map[string]interface{}{
				"error": map[string]interface{}{"kind": "Execution", "message": fmt.Sprintf("%%v", r)},
			})
			fmt.Println(string(out))
			os.Exit(1)
		}
	}()

	run(ctx, executor)
}

func run(ctx context.Context, executor *skill.Executor) {
%s
}
`, strconv.Quote(skillImplPath), indented)
}

// genGoMod produces the go.mod for a session's generated run module. The
// `replace` directive points back at this repository's module root so
// the generated program can import pkg/skill without being published.
func genGoMod(modulePath, thisModulePath, thisModuleDir string) string {
	return fmt.Sprintf(`module %s

go 1.24.4

require %s v0.0.0

replace %s => %s
`, modulePath, thisModulePath, thisModulePath, thisModuleDir)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
