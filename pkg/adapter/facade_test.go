package adapter

import (
	"context"
	"io"
	"testing"

	"github.com/flowcore-ai/streamcore/pkg/msgtypes"
	"github.com/flowcore-ai/streamcore/pkg/streamiter"
	"github.com/flowcore-ai/streamcore/pkg/toolbridge"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	chunks [][]byte
	idx    int
}

func (s *fakeSource) Next(ctx context.Context) (interface{}, error) {
	if s.idx >= len(s.chunks) {
		return nil, io.EOF
	}
	c := s.chunks[s.idx]
	s.idx++
	return c, nil
}

func (s *fakeSource) Close() error { return nil }

func fakeFactory(capturedBody *map[string]interface{}) StreamFactory {
	return func(ctx context.Context, body map[string]interface{}) (streamiter.Source, error) {
		*capturedBody = body
		return &fakeSource{chunks: [][]byte{
			[]byte(`{"choices":[{"delta":{"content":"hi"},"finish_reason":"stop"}]}`),
		}}, nil
	}
}

func TestStreamBuildsRequestAndDrains(t *testing.T) {
	var captured map[string]interface{}
	f, err := New(fakeFactory(&captured), Options{DefaultModel: "gpt-4o"})
	require.NoError(t, err)

	it, streamID, err := f.Stream(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, streamID)

	require.Equal(t, "gpt-4o", captured["model"])
	require.Equal(t, true, captured["stream"])
	require.Equal(t, 0.0, captured["temperature"])

	var gotFinal bool
	for {
		e, err := it.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if e.Kind.String() == "final" {
			gotFinal = true
		}
	}
	require.True(t, gotFinal)
}

func TestStreamRejectsReservedExtraKey(t *testing.T) {
	var captured map[string]interface{}
	f, err := New(fakeFactory(&captured), Options{DefaultModel: "gpt-4o"})
	require.NoError(t, err)

	_, _, err = f.Stream(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
		Extra:    map[string]interface{}{"stream": false},
	})
	require.Error(t, err)
}

func TestStreamRejectsMissingModel(t *testing.T) {
	var captured map[string]interface{}
	f, err := New(fakeFactory(&captured), Options{})
	require.NoError(t, err)

	_, _, err = f.Stream(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
}

func TestNewStripsModelFromDefaultOptions(t *testing.T) {
	var captured map[string]interface{}
	f, err := New(fakeFactory(&captured), Options{
		DefaultOptions: map[string]interface{}{"model": "gpt-4o-mini", "top_p": 0.9},
	})
	require.NoError(t, err)

	_, _, err = f.Stream(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", captured["model"])
	require.Equal(t, 0.9, captured["top_p"])
}

func TestNewRejectsNonStringDefaultModelOption(t *testing.T) {
	var captured map[string]interface{}
	_, err := New(fakeFactory(&captured), Options{
		DefaultOptions: map[string]interface{}{"model": 42},
	})
	require.Error(t, err)
}

func TestNewRejectsReservedDefaultOptionKey(t *testing.T) {
	var captured map[string]interface{}
	_, err := New(fakeFactory(&captured), Options{
		DefaultModel:   "gpt-4o",
		DefaultOptions: map[string]interface{}{"tools": []interface{}{}},
	})
	require.Error(t, err)
}

func TestStreamHonorsExtraTemperatureOverDefault(t *testing.T) {
	var captured map[string]interface{}
	f, err := New(fakeFactory(&captured), Options{DefaultModel: "gpt-4o"})
	require.NoError(t, err)

	_, _, err = f.Stream(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
		Extra:    map[string]interface{}{"temperature": 0.7},
	})
	require.NoError(t, err)
	require.Equal(t, 0.7, captured["temperature"])
}

func TestStreamRequestTemperatureOverridesExtra(t *testing.T) {
	var captured map[string]interface{}
	f, err := New(fakeFactory(&captured), Options{DefaultModel: "gpt-4o"})
	require.NoError(t, err)

	explicit := 0.9
	_, _, err = f.Stream(context.Background(), Request{
		Messages:    []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
		Extra:       map[string]interface{}{"temperature": 0.7},
		Temperature: &explicit,
	})
	require.NoError(t, err)
	require.Equal(t, 0.9, captured["temperature"])
}

func fakeGenerateFactory(capturedBody *map[string]interface{}, resp map[string]interface{}) GenerateFactory {
	return func(ctx context.Context, body map[string]interface{}) (map[string]interface{}, error) {
		*capturedBody = body
		return resp, nil
	}
}

func TestGenerateBuildsRequestWithoutStreamFlagAndParsesMessage(t *testing.T) {
	var captured map[string]interface{}
	resp := map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"message": map[string]interface{}{"role": "assistant", "content": "hi there"},
			},
		},
	}
	f, err := New(fakeFactory(&map[string]interface{}{}), Options{
		DefaultModel: "gpt-4o",
		GenerateFn:   fakeGenerateFactory(&captured, resp),
	})
	require.NoError(t, err)

	msg, err := f.Generate(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	require.Equal(t, msgtypes.RoleAssistant, msg.Role)
	require.Equal(t, "hi there", msg.Content)

	_, hasStream := captured["stream"]
	require.False(t, hasStream, "Generate must not set the stream flag")
}

func TestGenerateRejectsWithoutGenerateFn(t *testing.T) {
	f, err := New(fakeFactory(&map[string]interface{}{}), Options{DefaultModel: "gpt-4o"})
	require.NoError(t, err)

	_, err = f.Generate(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
}

func TestGenerateRejectsEmptyMessages(t *testing.T) {
	f, err := New(fakeFactory(&map[string]interface{}{}), Options{
		DefaultModel: "gpt-4o",
		GenerateFn:   fakeGenerateFactory(&map[string]interface{}{}, map[string]interface{}{}),
	})
	require.NoError(t, err)

	_, err = f.Generate(context.Background(), Request{})
	require.Error(t, err)
}

func TestGenerateRejectsMissingChoices(t *testing.T) {
	var captured map[string]interface{}
	f, err := New(fakeFactory(&map[string]interface{}{}), Options{
		DefaultModel: "gpt-4o",
		GenerateFn:   fakeGenerateFactory(&captured, map[string]interface{}{}),
	})
	require.NoError(t, err)

	_, err = f.Generate(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
}

func TestGenerateRejectsNonAssistantResponse(t *testing.T) {
	var captured map[string]interface{}
	resp := map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"message": map[string]interface{}{"role": "user", "content": "hi there"},
			},
		},
	}
	f, err := New(fakeFactory(&map[string]interface{}{}), Options{
		DefaultModel: "gpt-4o",
		GenerateFn:   fakeGenerateFactory(&captured, resp),
	})
	require.NoError(t, err)

	_, err = f.Generate(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
}

func TestStreamWithToolsConvertsSpecs(t *testing.T) {
	var captured map[string]interface{}
	f, err := New(fakeFactory(&captured), Options{DefaultModel: "gpt-4o"})
	require.NoError(t, err)

	spec, err := toolbridge.NewSpec("get_weather", "fetch weather", map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"city": map[string]interface{}{"type": "string"}},
	})
	require.NoError(t, err)

	_, _, err = f.Stream(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "weather?"}},
		Tools:    []toolbridge.ToolSpec{spec},
	})
	require.NoError(t, err)
	require.Contains(t, captured, "tools")
}

func TestStreamAcceptsPreConvertedRawTools(t *testing.T) {
	var captured map[string]interface{}
	f, err := New(fakeFactory(&captured), Options{DefaultModel: "gpt-4o"})
	require.NoError(t, err)

	raw := []map[string]interface{}{
		{"type": "function", "function": map[string]interface{}{"name": "noop", "parameters": map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}}},
	}
	_, _, err = f.Stream(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
		RawTools: raw,
	})
	require.NoError(t, err)
	require.Contains(t, captured, "tools")
}

func TestStreamRejectsMixedToolForms(t *testing.T) {
	var captured map[string]interface{}
	f, err := New(fakeFactory(&captured), Options{DefaultModel: "gpt-4o"})
	require.NoError(t, err)

	spec, err := toolbridge.NewSpec("get_weather", "fetch weather", map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"city": map[string]interface{}{"type": "string"}},
	})
	require.NoError(t, err)

	_, _, err = f.Stream(context.Background(), Request{
		Messages: []msgtypes.Message{{Role: msgtypes.RoleUser, Content: "hi"}},
		Tools:    []toolbridge.ToolSpec{spec},
		RawTools: []map[string]interface{}{{"type": "function"}},
	})
	require.Error(t, err)
}
