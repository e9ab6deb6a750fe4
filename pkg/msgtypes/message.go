// Package msgtypes defines the scalar-content Message used by requests into
// the adapter facade. Content is a plain string: this adapter core's scope
// is text and tool calls only, with no multi-modal content parts.
package msgtypes

import (
	"strconv"
	"strings"

	"github.com/flowcore-ai/streamcore/pkg/adaptererr"
	"github.com/flowcore-ai/streamcore/pkg/toolbridge"
)

// Role is the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in the conversation.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []toolbridge.ToolCall
}

// Validate enforces the Message invariant: Content != "" OR len(ToolCalls) > 0.
func (m Message) Validate() error {
	if m.Content == "" && len(m.ToolCalls) == 0 {
		return adaptererr.NewBadInput("content", "message must have non-empty content or at least one tool call", nil)
	}
	return nil
}

// ToProvider converts messages into the OpenAI chat-completions message
// array shape.
func ToProvider(messages []Message) ([]map[string]interface{}, error) {
	out := make([]map[string]interface{}, 0, len(messages))
	for i, m := range messages {
		if err := m.Validate(); err != nil {
			return nil, adaptererr.NewBadInput("messages["+strconv.Itoa(i)+"]", "invalid message", err)
		}

		entry := map[string]interface{}{
			"role":    string(m.Role),
			"content": m.Content,
		}

		if len(m.ToolCalls) > 0 {
			calls := make([]map[string]interface{}, len(m.ToolCalls))
			for j, tc := range m.ToolCalls {
				provTC, err := tc.ToProvider()
				if err != nil {
					return nil, adaptererr.NewBadInput("messages["+strconv.Itoa(i)+"].tool_calls["+strconv.Itoa(j)+"]", "invalid tool call", err)
				}
				calls[j] = provTC
			}
			entry["tool_calls"] = calls
		}

		out = append(out, entry)
	}
	return out, nil
}

// messageKeys is the closed set of keys FromProvider accepts on a provider
// message payload; any other key is rejected per the bridge's
// deserialization contract.
var messageKeys = map[string]bool{"role": true, "content": true, "tool_calls": true}

// FromProvider converts one provider message payload back into a canonical
// Message. It accepts only the keys role/content/tool_calls, trims and
// lowercases role and validates it against the closed set, defaults content to "" when
// absent, and enforces the Message invariant after normalization.
func FromProvider(data map[string]interface{}) (Message, error) {
	for k := range data {
		if !messageKeys[k] {
			return Message{}, adaptererr.NewBadInput(k, "unrecognized message field \""+k+"\"", nil)
		}
	}

	roleRaw, _ := data["role"].(string)
	role := Role(strings.ToLower(strings.TrimSpace(roleRaw)))
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
	default:
		return Message{}, adaptererr.NewBadInput("role", "role must be one of system, user, assistant", nil)
	}

	content, _ := data["content"].(string)

	var toolCalls []toolbridge.ToolCall
	if rawCalls, ok := data["tool_calls"]; ok {
		calls, ok := rawCalls.([]map[string]interface{})
		if !ok {
			if generic, isSlice := rawCalls.([]interface{}); isSlice {
				calls = make([]map[string]interface{}, 0, len(generic))
				for _, elem := range generic {
					m, isMap := elem.(map[string]interface{})
					if !isMap {
						return Message{}, adaptererr.NewBadInput("tool_calls", "each tool call must be an object", nil)
					}
					calls = append(calls, m)
				}
			} else {
				return Message{}, adaptererr.NewBadInput("tool_calls", "tool_calls must be an array", nil)
			}
		}
		parsed, err := toolbridge.ToolCallsFromProvider(calls)
		if err != nil {
			return Message{}, err
		}
		toolCalls = parsed
	}

	m := Message{Role: role, Content: content, ToolCalls: toolCalls}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}
