package frontmatter

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validate 校验已写出的文档
func Validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ValidateBytes(data)
}

// ValidateBytes 校验文档内容：分隔行齐全、块可解析为映射、每个值非空
func ValidateBytes(data []byte) (err error) {
	// 解析器的任何 panic 都视为校验失败
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformedBlock, r)
		}
	}()

	if !strings.HasPrefix(string(data), Marker) {
		return ErrMissingStartMarker
	}
	block, _, marker, err := split(data)
	if err != nil {
		return err
	}
	if marker != Marker {
		return ErrMissingStartMarker
	}

	var root yaml.Node
	if err := yaml.Unmarshal(block, &root); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBlock, err)
	}
	if len(root.Content) == 0 {
		return fmt.Errorf("%w: block is empty", ErrMalformedBlock)
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: expected a mapping", ErrMalformedBlock)
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i].Value, mapping.Content[i+1]
		if isEmptyNode(value) {
			return fmt.Errorf("%w: %s", ErrEmptyValue, key)
		}
	}
	return nil
}

// IsValid 判断文档是否通过校验
func IsValid(data []byte) bool {
	return ValidateBytes(data) == nil
}

func isEmptyNode(n *yaml.Node) bool {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Tag == "!!null" || (n.Tag == "!!str" && n.Value == "")
	case yaml.SequenceNode, yaml.MappingNode:
		return false
	default:
		return true
	}
}
