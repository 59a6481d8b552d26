package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Assemble 按固定字段顺序生成前置元数据块（含分隔行）
func Assemble(fields map[Field]Value, policy FieldPolicy) ([]byte, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode}

	for _, field := range CanonicalOrder {
		if !policy.Enabled(field) {
			continue
		}
		value, ok := fields[field]
		if !ok || value.IsEmpty() {
			continue
		}
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(field)},
			valueNode(value))
	}

	var buf bytes.Buffer
	buf.WriteString(Marker + "\n")
	if len(mapping.Content) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping}}); err != nil {
			return nil, fmt.Errorf("failed to encode front matter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode front matter: %w", err)
		}
	}
	buf.WriteString(Marker + "\n")
	return buf.Bytes(), nil
}

func valueNode(v Value) *yaml.Node {
	switch v.Kind {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool)}
	case KindList:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, item := range v.List {
			if strings.TrimSpace(item) == "" {
				continue
			}
			seq.Content = append(seq.Content, quoted(item))
		}
		return seq
	case KindOpaque:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: v.tag, Value: v.Str, Style: v.style}
	default:
		return quoted(v.Str)
	}
}

func quoted(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}

// Render 拼接前置元数据与正文
func Render(frontMatter []byte, body string) []byte {
	out := make([]byte, 0, len(frontMatter)+len(body))
	out = append(out, frontMatter...)
	return append(out, body...)
}
