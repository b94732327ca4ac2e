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

package skill

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// validateInput validates input against def's inputSchema. A nil or empty
// schema permits any input (no declared constraints to check).
func validateInput(def *Definition, input map[string]interface{}) error {
	if len(def.InputSchema) == 0 {
		return nil
	}

	schemaBytes, err := json.Marshal(def.InputSchema)
	if err != nil {
		return fmt.Errorf("marshaling input_schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	const resource = "skill-input-schema.json"
	if err := compiler.AddResource(resource, bytes.NewReader(schemaBytes)); err != nil {
		return fmt.Errorf("loading input_schema: %w", err)
	}
	schema, err := compiler.Compile(resource)
	if err != nil {
		return fmt.Errorf("compiling input_schema: %w", err)
	}

	// jsonschema validates against Go values produced by encoding/json
	// decoding; round-trip input through JSON so numeric types match what
	// the schema expects.
	inputBytes, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshaling input: %w", err)
	}
	var instance interface{}
	if err := json.Unmarshal(inputBytes, &instance); err != nil {
		return fmt.Errorf("unmarshaling input: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		return err
	}
	return nil
}
