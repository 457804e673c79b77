package config

import (
	"sort"
	"strconv"
	"strings"

	dserrors "github.com/systmms/davsync/internal/errors"
)

// Option is a single raw key/value pair as read from a config section.
type Option struct {
	Key   string
	Value string
}

// ParseValue coerces a raw config string into a bool, int64, float64 or
// string. Rules are applied in order and the first match wins.
func ParseValue(raw string) (interface{}, error) {
	switch strings.ToLower(raw) {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}

	// A single quoted value is taken verbatim; '#' inside it is not a comment.
	if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		if inner := raw[1 : len(raw)-1]; !strings.Contains(inner, `"`) {
			return inner, nil
		}
	}

	if strings.Contains(raw, "#") {
		return nil, &dserrors.ConfigValueError{
			Raw:    raw,
			Reason: "'#' is reserved for comments; wrap the value in double quotes",
		}
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i, nil
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, nil
	}

	return raw, nil
}

// ParseOptions coerces every value of pairs with ParseValue. The first
// malformed value aborts with a ConfigError naming its key.
func ParseOptions(pairs []Option) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		v, err := ParseValue(p.Value)
		if err != nil {
			return nil, dserrors.ConfigError{
				Field:      p.Key,
				Value:      p.Value,
				Message:    "malformed value",
				Suggestion: `Keep the double quotes in the value, e.g. '"abc # def"'`,
				Err:        err,
			}
		}
		result[p.Key] = v
	}
	return result, nil
}

// OptionsFromMap turns a raw section into sorted Options so that errors are
// reported deterministically.
func OptionsFromMap(raw map[string]string) []Option {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make([]Option, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, Option{Key: k, Value: raw[k]})
	}
	return opts
}
