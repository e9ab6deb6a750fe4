package toolbridge

import (
	"encoding/json"
	"strconv"

	"github.com/flowcore-ai/streamcore/pkg/adaptererr"
	"github.com/flowcore-ai/streamcore/pkg/jsonvalue"
)

// ToolCall is a validated, frozen tool call as it appears on a Message.
type ToolCall struct {
	ID        string
	Name      string
	Arguments jsonvalue.Value // frozen JSON object
}

// ParseArguments accepts a provider's tool-call arguments in either of its
// two observed shapes (already-decoded map, or a raw JSON string) and
// returns a validated, frozen ToolCall. Parse failure is always reported as
// BadToolCall; there is no lenient/partial-parse fallback, because a tool
// call with unparsable arguments is not safely callable.
func ParseArguments(id, name string, rawArgs interface{}) (ToolCall, error) {
	if id == "" {
		return ToolCall{}, adaptererr.NewBadToolCall("id", "tool call id must be a non-empty string", nil)
	}
	if !nameRe.MatchString(name) {
		return ToolCall{}, adaptererr.NewBadToolCall("name", "tool call name must match ^[A-Za-z0-9_-]{1,64}$", nil)
	}

	var frozen jsonvalue.Value
	var err error

	switch v := rawArgs.(type) {
	case map[string]interface{}:
		frozen, err = jsonvalue.Freeze(v)
	case string:
		frozen, err = jsonvalue.FreezeJSON([]byte(v))
	case []byte:
		frozen, err = jsonvalue.FreezeJSON(v)
	default:
		return ToolCall{}, adaptererr.NewBadToolCall("arguments", "unsupported arguments type", nil)
	}
	if err != nil {
		return ToolCall{}, adaptererr.NewBadToolCall("arguments", "arguments fragments did not reassemble into valid JSON", err)
	}
	if frozen.Kind() != jsonvalue.KindObject {
		return ToolCall{}, adaptererr.NewBadToolCall("arguments", "arguments must decode to a JSON object", nil)
	}

	return ToolCall{ID: id, Name: name, Arguments: frozen}, nil
}

// ToProvider thaws and re-encodes a tool call's arguments into the string
// form OpenAI-shaped providers expect on an assistant message's tool_calls.
func (tc ToolCall) ToProvider() (map[string]interface{}, error) {
	argBytes, err := json.Marshal(tc.Arguments.Thaw())
	if err != nil {
		return nil, adaptererr.NewBadToolCall("arguments", "frozen arguments failed to re-encode", err)
	}
	return map[string]interface{}{
		"id":   tc.ID,
		"type": "function",
		"function": map[string]interface{}{
			"name":      tc.Name,
			"arguments": string(argBytes),
		},
	}, nil
}

// ToolCallsFromProvider converts a provider's tool_calls array (as it
// appears on an assistant message or response payload — each entry
// {id, type: "function", function: {name, arguments}}) into validated,
// frozen ToolCalls. arguments may be the already-decoded map shape or the
// JSON-encoded string shape; ParseArguments accepts both.
func ToolCallsFromProvider(raw []map[string]interface{}) ([]ToolCall, error) {
	out := make([]ToolCall, 0, len(raw))
	for i, entry := range raw {
		path := "tool_calls[" + strconv.Itoa(i) + "]"

		id, _ := entry["id"].(string)
		if id == "" {
			return nil, adaptererr.NewBadToolCall(path+".id", "tool call id must be a non-empty string", nil)
		}
		if typ, ok := entry["type"]; ok {
			if s, isStr := typ.(string); !isStr || s != "function" {
				return nil, adaptererr.NewBadToolCall(path+".type", "tool call type must be \"function\"", nil)
			}
		}

		fn, ok := entry["function"].(map[string]interface{})
		if !ok {
			return nil, adaptererr.NewBadToolCall(path+".function", "tool call must carry a function object", nil)
		}
		name, _ := fn["name"].(string)
		if name == "" {
			return nil, adaptererr.NewBadToolCall(path+".function.name", "tool call function name must be a non-empty string", nil)
		}
		args, ok := fn["arguments"]
		if !ok {
			return nil, adaptererr.NewBadToolCall(path+".function.arguments", "tool call must carry arguments", nil)
		}

		tc, err := ParseArguments(id, name, args)
		if err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, nil
}

// Validate checks that a tool call references one of the given specs.
func Validate(call ToolCall, specs []ToolSpec) error {
	for _, s := range specs {
		if s.Name == call.Name {
			return nil
		}
	}
	return adaptererr.NewBadToolCall("name", "tool call references unknown tool \""+call.Name+"\"", nil)
}
