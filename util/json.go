package util

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// JsonString generate json string for an object
func JsonString(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseJson parse json string to an object
func ParseJson(jsonStr string, v interface{}) error {
	return json.Unmarshal([]byte(jsonStr), v)
}

// ParseKeyValues turn key=value pairs into a map, values stay strings and the last duplicate wins
func ParseKeyValues(pairs []string) (map[string]interface{}, error) {
	ret := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		idx := strings.Index(pair, "=")
		if idx <= 0 {
			return nil, errors.Errorf("invalid parameter %q, expected key=value", pair)
		}
		ret[strings.TrimSpace(pair[:idx])] = pair[idx+1:]
	}
	return ret, nil
}
