package gobatch

import (
	"strconv"

	"github.com/pkg/errors"
)

// JobParams parameters a job execution is started with
type JobParams map[string]interface{}

// GetBool resolves a boolean-like parameter, an absent or null value yields def
func (p JobParams) GetBool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch r := v.(type) {
	case bool:
		return r, nil
	case string:
		b, err := strconv.ParseBool(r)
		if err != nil {
			return false, errors.Errorf("job parameter %v is not a boolean: %q", key, r)
		}
		return b, nil
	}
	return false, errors.Errorf("job parameter %v is not a boolean: %v", key, v)
}

// GetString resolves a string parameter, non-string scalars are formatted
func (p JobParams) GetString(key string, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	switch r := v.(type) {
	case string:
		return r
	case bool:
		return strconv.FormatBool(r)
	case float64:
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	if n, ok := toInt64(v); ok {
		return strconv.FormatInt(n, 10)
	}
	return def
}

func (p JobParams) copy() JobParams {
	result := make(JobParams, len(p))
	for k, v := range p {
		result[k] = v
	}
	return result
}
