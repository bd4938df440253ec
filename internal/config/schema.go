package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeInt ConfigValueType = iota
	TypeString
	TypeEnum
	// TypeList is a list of strings, written comma-separated on the command line.
	TypeList
	// TypeObjectList is a list of mappings (categories, rules). It can only be
	// edited in the config file.
	TypeObjectList
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	case TypeList:
		return "list"
	case TypeObjectList:
		return "object list"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Key as written in the config file
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Default       interface{}     // Default value
}

// KnownKeys is the registry of all known configuration keys with their schemas.
var KnownKeys = func() map[string]ConfigKeySchema {
	defaults := GetDefaults()
	keys := map[string]ConfigKeySchema{
		"sort": {
			Type:          TypeEnum,
			AllowedValues: []string{"ASC", "DESC"},
			Description:   "Order of pull requests by merge time",
		},
		"template": {
			Type:        TypeString,
			Description: "Template of the whole document",
		},
		"pr_template": {
			Type:        TypeString,
			Description: "Template of a single pull request entry",
		},
		"empty_template": {
			Type:        TypeString,
			Description: "Document used when no pull request was merged in the range",
		},
		"categories": {
			Type:        TypeObjectList,
			Description: "Ordered categories with a title and the labels they collect",
		},
		"ignore_labels": {
			Type:        TypeList,
			Description: "Labels that exclude a pull request from every category",
		},
		"label_extractor": {
			Type:        TypeObjectList,
			Description: "Rules deriving extra labels from a pull request field",
		},
		"transformers": {
			Type:        TypeObjectList,
			Description: "Find/replace rules applied to each rendered entry",
		},
		"exclude_merge_branches": {
			Type:        TypeList,
			Description: "Commit summaries containing any of these are dropped",
		},
		"max_tags_to_fetch": {
			Type:        TypeInt,
			Description: "Maximum number of tags read when resolving the previous tag",
		},
		"max_pull_requests": {
			Type:        TypeInt,
			Description: "Maximum number of pull requests fetched",
		},
		"max_back_track_time_days": {
			Type:        TypeInt,
			Description: "How many days back pull requests are searched",
		},
	}
	for path, schema := range keys {
		schema.Path = path
		schema.Default = defaults[path]
		keys[path] = schema
	}
	return keys
}()

// SortedKeys returns the known key names in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for key := range KnownKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// ParsedValue represents a configuration value after type inference and validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeInt:
		return parseIntValue(value)
	case TypeEnum:
		return parseEnumValue(schema, value)
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	case TypeList:
		return parseListValue(value), nil
	case TypeObjectList:
		return ParsedValue{}, fmt.Errorf("%s is a list of mappings; edit the config file instead", schema.Path)
	default:
		return ParsedValue{}, fmt.Errorf("unsupported type: %v", schema.Type)
	}
}

// parseIntValue parses a positive integer.
func parseIntValue(value string) (ParsedValue, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid integer: %q", value)
	}
	if n < 1 {
		return ParsedValue{}, fmt.Errorf("invalid value: %d (must be at least 1)", n)
	}
	return ParsedValue{Raw: value, Parsed: n, Type: TypeInt}, nil
}

// parseEnumValue validates a value against allowed enum options, ignoring case.
func parseEnumValue(schema ConfigKeySchema, value string) (ParsedValue, error) {
	for _, allowed := range schema.AllowedValues {
		if strings.EqualFold(value, allowed) {
			return ParsedValue{Raw: value, Parsed: allowed, Type: TypeEnum}, nil
		}
	}
	return ParsedValue{}, fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value,
		strings.Join(schema.AllowedValues, ", "),
	)
}

// parseListValue splits a comma-separated list, dropping empty items.
func parseListValue(value string) ParsedValue {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return ParsedValue{Raw: value, Parsed: items, Type: TypeList}
}
