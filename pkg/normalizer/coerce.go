package normalizer

import (
	"encoding/json"

	"github.com/flowcore-ai/streamcore/pkg/adaptererr"
)

// mapBag is satisfied by provider chunk types that expose their fields as a
// plain map instead of encoding directly to JSON, so SDK wrapper types can
// be ingested without an intermediate marshal.
type mapBag interface {
	ToMap() map[string]interface{}
}

// coerce normalizes whatever shape a provider chunk arrives in (a decoded
// JSON map, raw JSON bytes, or a bag-like wrapper type) into a plain
// map[string]interface{} for inspection.
func coerce(raw interface{}) (map[string]interface{}, error) {
	switch v := raw.(type) {
	case map[string]interface{}:
		return v, nil
	case []byte:
		var m map[string]interface{}
		if err := json.Unmarshal(v, &m); err != nil {
			return nil, adaptererr.NewBadChunk("", "chunk bytes are not a JSON object", err)
		}
		return m, nil
	case json.RawMessage:
		var m map[string]interface{}
		if err := json.Unmarshal(v, &m); err != nil {
			return nil, adaptererr.NewBadChunk("", "chunk bytes are not a JSON object", err)
		}
		return m, nil
	case string:
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, adaptererr.NewBadChunk("", "chunk string is not a JSON object", err)
		}
		return m, nil
	case mapBag:
		return v.ToMap(), nil
	case nil:
		return nil, adaptererr.NewBadChunk("", "chunk is nil", nil)
	default:
		return nil, adaptererr.NewBadChunk("", "unrecognized chunk shape", nil)
	}
}
