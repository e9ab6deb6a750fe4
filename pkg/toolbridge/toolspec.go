// Package toolbridge validates and freezes tool specifications and tool
// calls, and converts them to and from the provider wire format. The
// contract is validate-then-freeze: every parameter schema and every
// tool-call argument set is deep-frozen via jsonvalue before it is handed to
// the rest of the system.
package toolbridge

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/flowcore-ai/streamcore/pkg/adaptererr"
	"github.com/flowcore-ai/streamcore/pkg/jsonvalue"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ToolSpec describes a tool the model may call.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  jsonvalue.Value // frozen JSON object schema
}

// NewSpec validates a candidate tool specification and returns a ToolSpec
// with its parameter schema deep-frozen.
//
// Validation, per the tool bridge's contract:
//   - Name must match ^[A-Za-z0-9_-]{1,64}$.
//   - Description, if present, must be non-empty once trimmed.
//   - Parameters must decode to a JSON object with "type": "object", a
//     "properties" map, and an optional "required" list referencing only
//     properties that are actually defined.
func NewSpec(name, description string, parameters map[string]interface{}) (ToolSpec, error) {
	if !nameRe.MatchString(name) {
		return ToolSpec{}, adaptererr.NewBadToolSpec("name", "tool name must match ^[A-Za-z0-9_-]{1,64}$", nil)
	}
	if description != "" && strings.TrimSpace(description) == "" {
		return ToolSpec{}, adaptererr.NewBadToolSpec("description", "description must be non-empty when present", nil)
	}

	frozen, err := jsonvalue.Freeze(parameters)
	if err != nil {
		return ToolSpec{}, adaptererr.NewBadToolSpec("parameters", "parameters must be valid JSON", err)
	}
	if frozen.Kind() != jsonvalue.KindObject {
		return ToolSpec{}, adaptererr.NewBadToolSpec("parameters", "parameters must be a JSON object", nil)
	}

	typ, ok := frozen.Get("type")
	if !ok {
		return ToolSpec{}, adaptererr.NewBadToolSpec("parameters.type", "parameters must declare \"type\": \"object\"", nil)
	}
	if s, _ := typ.String(); s != "object" {
		return ToolSpec{}, adaptererr.NewBadToolSpec("parameters.type", "parameters.type must be \"object\"", nil)
	}

	props, ok := frozen.Get("properties")
	if !ok || props.Kind() != jsonvalue.KindObject {
		return ToolSpec{}, adaptererr.NewBadToolSpec("parameters.properties", "parameters must declare a properties object", nil)
	}
	for _, k := range props.Keys() {
		if k == "" {
			return ToolSpec{}, adaptererr.NewBadToolSpec("parameters.properties", "property keys must not be empty", nil)
		}
	}

	if req, ok := frozen.Get("required"); ok {
		arr, isArr := req.Array()
		if !isArr {
			return ToolSpec{}, adaptererr.NewBadToolSpec("parameters.required", "required must be an array", nil)
		}
		for i, elem := range arr {
			rn, isStr := elem.String()
			if !isStr {
				return ToolSpec{}, adaptererr.NewBadToolSpec("parameters.required", "required entries must be strings", nil)
			}
			if _, defined := props.Get(rn); !defined {
				return ToolSpec{}, adaptererr.NewBadToolSpec(
					"parameters.required["+strconv.Itoa(i)+"]", "required property \""+rn+"\" is not defined in properties", nil)
			}
		}
	}

	return ToolSpec{Name: name, Description: description, Parameters: frozen}, nil
}

// SpecsToProvider converts specs into OpenAI chat-completions tool-definition
// JSON. It rejects duplicate tool names, since a provider cannot
// disambiguate a call against two identically named tools.
func SpecsToProvider(specs []ToolSpec) ([]map[string]interface{}, error) {
	seen := make(map[string]bool, len(specs))
	out := make([]map[string]interface{}, len(specs))
	for i, spec := range specs {
		if seen[spec.Name] {
			return nil, adaptererr.NewBadToolSpec("tools["+strconv.Itoa(i)+"].name", "duplicate tool name \""+spec.Name+"\"", nil)
		}
		seen[spec.Name] = true

		function := map[string]interface{}{
			"name":       spec.Name,
			"parameters": spec.Parameters.Thaw(),
		}
		if spec.Description != "" {
			function["description"] = spec.Description
		}

		out[i] = map[string]interface{}{
			"type":     "function",
			"function": function,
		}
	}
	return out, nil
}
