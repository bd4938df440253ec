package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyKeyPath is returned for an empty configuration key.
var ErrEmptyKeyPath = errors.New("empty key path")

// ParseKeyPath splits a dotted key into its segments.
func ParseKeyPath(path string) ([]string, error) {
	if path == "" {
		return nil, ErrEmptyKeyPath
	}
	return strings.Split(path, "."), nil
}

// GetNestedValue returns the value node at keyPath, or nil when absent.
func GetNestedValue(root *yaml.Node, keyPath []string) *yaml.Node {
	if len(keyPath) == 0 || root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	node := root.Content[0]
	for _, key := range keyPath {
		if node.Kind != yaml.MappingNode {
			return nil
		}
		node = mappingValue(node, key)
		if node == nil {
			return nil
		}
	}
	return node
}

// SetNestedValue sets keyPath to value, creating intermediate mappings as
// needed. Comments attached to existing keys are kept.
func SetNestedValue(root *yaml.Node, keyPath []string, value interface{}) error {
	if len(keyPath) == 0 {
		return ErrEmptyKeyPath
	}
	if root.Kind == 0 {
		root.Kind = yaml.DocumentNode
	}
	if root.Kind != yaml.DocumentNode {
		return fmt.Errorf("expected a YAML document")
	}
	if len(root.Content) == 0 {
		root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}

	node := root.Content[0]
	for i, key := range keyPath {
		if node.Kind != yaml.MappingNode {
			return fmt.Errorf("%s is not a mapping", strings.Join(keyPath[:i], "."))
		}

		child := mappingValue(node, key)
		if i == len(keyPath)-1 {
			var encoded yaml.Node
			if err := encoded.Encode(value); err != nil {
				return fmt.Errorf("encoding value for %s: %w", key, err)
			}
			if child == nil {
				node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, &encoded)
				return nil
			}
			encoded.HeadComment = child.HeadComment
			encoded.LineComment = child.LineComment
			encoded.FootComment = child.FootComment
			*child = encoded
			return nil
		}

		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
		}
		node = child
	}
	return nil
}

func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// SetConfigValue validates value against the key's schema and writes it to
// the YAML config file at configPath, creating the file if needed.
func SetConfigValue(configPath, key, value string) error {
	keyPath, err := ParseKeyPath(key)
	if err != nil {
		return err
	}
	parsed, err := ValidateValue(key, value)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yml", ".yaml":
	default:
		return fmt.Errorf("%s: only YAML config files can be edited", configPath)
	}

	var root yaml.Node
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := ValidateYAMLSyntaxFromBytes(data, configPath); err != nil {
			return err
		}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := yaml.Unmarshal(data, &root); err != nil {
				return fmt.Errorf("parsing %s: %w", configPath, err)
			}
		}
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("reading %s: %w", configPath, err)
	}

	if err := SetNestedValue(&root, keyPath, parsed.Parsed); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	return nil
}
