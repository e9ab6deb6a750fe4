package toolbridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validParams() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"city": map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"city"},
	}
}

func TestNewSpecValid(t *testing.T) {
	spec, err := NewSpec("get_weather", "fetch the weather", validParams())
	require.NoError(t, err)
	require.Equal(t, "get_weather", spec.Name)
}

func TestNewSpecRejectsBadName(t *testing.T) {
	_, err := NewSpec("get weather!", "", validParams())
	require.Error(t, err)
}

func TestNewSpecRejectsRequiredNotInProperties(t *testing.T) {
	params := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"city": map[string]interface{}{"type": "string"}},
		"required":   []interface{}{"country"},
	}
	_, err := NewSpec("get_weather", "", params)
	require.Error(t, err)
}

func TestSpecsToProviderOmitsEmptyDescription(t *testing.T) {
	spec, err := NewSpec("get_weather", "", validParams())
	require.NoError(t, err)

	out, err := SpecsToProvider([]ToolSpec{spec})
	require.NoError(t, err)

	function, ok := out[0]["function"].(map[string]interface{})
	require.True(t, ok)
	_, hasDescription := function["description"]
	require.False(t, hasDescription)
}

func TestSpecsToProviderIncludesNonEmptyDescription(t *testing.T) {
	spec, err := NewSpec("get_weather", "fetch the weather", validParams())
	require.NoError(t, err)

	out, err := SpecsToProvider([]ToolSpec{spec})
	require.NoError(t, err)

	function, ok := out[0]["function"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "fetch the weather", function["description"])
}

func TestSpecsToProviderRejectsDuplicateNames(t *testing.T) {
	spec, err := NewSpec("dup", "", validParams())
	require.NoError(t, err)

	_, err = SpecsToProvider([]ToolSpec{spec, spec})
	require.Error(t, err)
}

func TestParseArgumentsFromMap(t *testing.T) {
	tc, err := ParseArguments("call_1", "get_weather", map[string]interface{}{"city": "Boston"})
	require.NoError(t, err)

	city, ok := tc.Arguments.Get("city")
	require.True(t, ok)
	s, _ := city.String()
	require.Equal(t, "Boston", s)
}

func TestParseArgumentsFromConcatenatedJSONString(t *testing.T) {
	tc, err := ParseArguments("call_1", "get_weather", `{"city": "Bo`+`ston"}`)
	require.NoError(t, err)
	s, _ := mustGet(t, tc, "city").String()
	require.Equal(t, "Boston", s)
}

func TestParseArgumentsRejectsUnparsableFragments(t *testing.T) {
	_, err := ParseArguments("call_1", "get_weather", `{"city": "Bo`)
	require.Error(t, err)
}

func TestValidateRejectsUnknownTool(t *testing.T) {
	spec, err := NewSpec("get_weather", "", validParams())
	require.NoError(t, err)

	call, err := ParseArguments("call_1", "other_tool", map[string]interface{}{})
	require.NoError(t, err)

	require.Error(t, Validate(call, []ToolSpec{spec}))
}

func TestToolCallsFromProviderDecodesStringArguments(t *testing.T) {
	calls, err := ToolCallsFromProvider([]map[string]interface{}{
		{
			"id":   "call_1",
			"type": "function",
			"function": map[string]interface{}{
				"name":      "get_weather",
				"arguments": `{"city": "Boston"}`,
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, calls, 1)
	require.Equal(t, "call_1", calls[0].ID)
	require.Equal(t, "get_weather", calls[0].Name)
}

func TestToolCallsFromProviderRejectsMissingID(t *testing.T) {
	_, err := ToolCallsFromProvider([]map[string]interface{}{
		{
			"type": "function",
			"function": map[string]interface{}{
				"name":      "get_weather",
				"arguments": `{}`,
			},
		},
	})
	require.Error(t, err)
}

func TestToolCallRoundTripsThroughProviderForm(t *testing.T) {
	tc, err := ParseArguments("call_1", "get_weather", map[string]interface{}{"city": "Boston"})
	require.NoError(t, err)

	provider, err := tc.ToProvider()
	require.NoError(t, err)

	back, err := ToolCallsFromProvider([]map[string]interface{}{provider})
	require.NoError(t, err)
	require.Len(t, back, 1)

	city, ok := back[0].Arguments.Get("city")
	require.True(t, ok)
	s, _ := city.String()
	require.Equal(t, "Boston", s)
}

func mustGet(t *testing.T, tc ToolCall, key string) interface {
	String() (string, bool)
} {
	t.Helper()
	v, ok := tc.Arguments.Get(key)
	require.True(t, ok)
	return v
}
