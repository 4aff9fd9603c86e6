package coach

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the outermost {...} span of a model reply. Models often
// wrap JSON in prose or code fences.
func ExtractJSON(reply string) (string, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return reply[start : end+1], true
}

// decodeReply extracts and decodes the JSON object in a model reply.
func decodeReply(reply string, v interface{}) error {
	raw, ok := ExtractJSON(reply)
	if !ok {
		return fmt.Errorf("no JSON found in response")
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("invalid JSON in response: %w", err)
	}
	return nil
}
