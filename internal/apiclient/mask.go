package apiclient

import (
	"encoding/json"
	"strings"
)

var sensitiveKeys = map[string]bool{
	"password":             true,
	"passwordconfirmation": true,
	"token":                true,
	"secret":               true,
	"api_key":              true,
	"jwt":                  true,
}

// maskJSON replaces sensitive values in a JSON document with "***".
// Anything that is not a JSON object comes back unchanged
func maskJSON(data []byte) []byte {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return data
	}
	maskValue(doc)

	masked, err := json.Marshal(doc)
	if err != nil {
		return data
	}
	return masked
}

func maskValue(v interface{}) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			if sensitiveKeys[strings.ToLower(k)] {
				t[k] = "***"
				continue
			}
			maskValue(child)
		}
	case []interface{}:
		for _, child := range t {
			maskValue(child)
		}
	}
}
