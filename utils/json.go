package utils

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ParseJSONFromLLMResponse robustly parses JSON from LLM responses.
// Handles various formats:
// - Raw JSON: {"intent": ...}
// - Code blocks: ```json\n{...}\n``` or ```\n{...}\n```
// - Surrounding text: "Here is the classification: {...}"
// - Arrays: [...]
func ParseJSONFromLLMResponse(content string) (interface{}, error) {
	content = strings.TrimSpace(content)

	// Try direct parse first
	var result interface{}
	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	// Try to find JSON in markdown code blocks (```json or ```)
	codeBlockRe := regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")
	if matches := codeBlockRe.FindStringSubmatch(content); len(matches) > 1 {
		if err := json.Unmarshal([]byte(strings.TrimSpace(matches[1])), &result); err == nil {
			return result, nil
		}
	}

	// Try to find JSON object by looking for outermost { ... }
	jsonObjectRe := regexp.MustCompile(`\{[\s\S]*\}`)
	if match := jsonObjectRe.FindString(content); match != "" {
		if err := json.Unmarshal([]byte(match), &result); err == nil {
			return result, nil
		}
	}

	// Try to find JSON array by looking for outermost [ ... ]
	jsonArrayRe := regexp.MustCompile(`\[[\s\S]*\]`)
	if match := jsonArrayRe.FindString(content); match != "" {
		if err := json.Unmarshal([]byte(match), &result); err == nil {
			return result, nil
		}
	}

	return nil, errors.New("unable to parse JSON from LLM response")
}

// DecodeJSONFromLLMResponse parses the LLM response like
// ParseJSONFromLLMResponse and decodes it into out.
func DecodeJSONFromLLMResponse(content string, out interface{}) error {
	parsed, err := ParseJSONFromLLMResponse(content)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(parsed)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// ExtractStringList extracts a []string from a parsed LLM response, accepting
// either a direct array or an object with the given key.
func ExtractStringList(parsed interface{}, key string, max int) []string {
	var out []string

	appendStrings := func(arr []interface{}) {
		for _, v := range arr {
			if s, ok := v.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
	}

	switch v := parsed.(type) {
	case map[string]interface{}:
		if val, ok := v[key]; ok {
			if arr, ok := val.([]interface{}); ok {
				appendStrings(arr)
			}
		}
	case []interface{}:
		appendStrings(v)
	}

	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
