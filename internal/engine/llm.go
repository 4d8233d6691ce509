package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// currentDate returns today's date in ISO 8601 format (UTC).
func currentDate() string {
	return time.Now().UTC().Format("2006-01-02")
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CallLLM sends a prompt using the configured client. No retry, no streaming.
func CallLLM(ctx context.Context, prompt string) (string, error) {
	if cfg.LLMComplete == nil {
		return "", fmt.Errorf("llm: %w", ErrNotConfigured)
	}
	IncrLLMCall()
	resp, err := cfg.LLMComplete(ctx, prompt)
	if err != nil {
		IncrLLMError()
		return "", err
	}
	return stripFences(resp), nil
}

// CompleteJSONField sends prompt and returns the named string field of the JSON reply.
// A reply that is not valid JSON falls back to tolerant field extraction, then to the raw text.
func CompleteJSONField(ctx context.Context, prompt, field string) (string, error) {
	raw, err := CallLLM(ctx, prompt)
	if err != nil {
		return "", err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		var text string
		if v, ok := obj[field]; ok && json.Unmarshal(v, &text) == nil && text != "" {
			return strings.TrimSpace(text), nil
		}
	}
	if text := ExtractJSONField(raw, field); text != "" {
		return strings.TrimSpace(text), nil
	}
	if raw == "" {
		return "", fmt.Errorf("llm: empty response")
	}
	return raw, nil
}

// ExtractJSONField extracts a string field from malformed JSON
// where the value may contain unescaped newlines or special characters.
func ExtractJSONField(raw, field string) string {
	prefix := `"` + field + `"`
	idx := strings.Index(raw, prefix)
	if idx < 0 {
		return ""
	}
	rest := raw[idx+len(prefix):]
	rest = strings.TrimSpace(rest)
	if len(rest) == 0 || rest[0] != ':' {
		return ""
	}
	rest = strings.TrimSpace(rest[1:])
	if len(rest) == 0 || rest[0] != '"' {
		return ""
	}
	rest = rest[1:] // skip opening quote

	var sb strings.Builder
	for i := 0; i < len(rest); i++ {
		if rest[i] == '\\' && i+1 < len(rest) {
			if rest[i+1] == '"' {
				sb.WriteByte('"')
				i++
				continue
			}
			if rest[i+1] == 'n' {
				sb.WriteByte('\n')
				i++
				continue
			}
			sb.WriteByte(rest[i])
			continue
		}
		if rest[i] == '"' {
			return sb.String()
		}
		sb.WriteByte(rest[i])
	}
	if sb.Len() > 0 {
		return sb.String()
	}
	return ""
}

// BuildNarrativePrompt fills the narrative template with the channel facts block.
func BuildNarrativePrompt(channelTitle, facts string) string {
	return fmt.Sprintf(narrativePrompt, currentDate(), channelTitle, facts)
}
