package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// Marker YAML 前置元数据分隔行
	Marker = "---"
	// TOMLMarker Hugo 的 TOML 前置元数据分隔行
	TOMLMarker = "+++"
)

var (
	ErrNoFrontMatter      = errors.New("document has no front matter")
	ErrMissingStartMarker = errors.New("front matter start marker missing")
	ErrMissingEndMarker   = errors.New("front matter end marker missing")
	ErrMalformedBlock     = errors.New("front matter block is malformed")
	ErrEmptyValue         = errors.New("front matter value is empty")
)

// Load 读取并解析文档
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Parse 解析文档；未知字段被丢弃
func Parse(data []byte) (*Document, error) {
	block, body, marker, err := split(data)
	if err != nil {
		return nil, err
	}

	var fields map[Field]Value
	if marker == TOMLMarker {
		fields, err = parseTOML(block)
	} else {
		fields, err = parseYAML(block)
	}
	if err != nil {
		return nil, err
	}

	return &Document{Fields: fields, Body: body}, nil
}

// split 拆分出前置元数据块和正文
func split(data []byte) (block []byte, body string, marker string, err error) {
	content := bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	first, rest, _ := cutLine(content)
	switch strings.TrimRight(string(first), " \t\r") {
	case Marker:
		marker = Marker
	case TOMLMarker:
		marker = TOMLMarker
	default:
		return nil, "", "", fmt.Errorf("%w: %w", ErrNoFrontMatter, ErrMissingStartMarker)
	}

	offset := 0
	for len(rest[offset:]) > 0 {
		line, next, _ := cutLine(rest[offset:])
		if strings.TrimRight(string(line), " \t\r") == marker {
			return rest[:offset], string(next), marker, nil
		}
		offset = len(rest) - len(next)
	}
	return nil, "", "", ErrMissingEndMarker
}

// cutLine 返回第一行（不含换行符）和剩余内容
func cutLine(b []byte) (line, rest []byte, found bool) {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i], b[i+1:], true
	}
	return b, nil, false
}

func parseYAML(block []byte) (map[Field]Value, error) {
	fields := make(map[Field]Value)

	var root yaml.Node
	if err := yaml.Unmarshal(block, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBlock, err)
	}
	if len(root.Content) == 0 {
		return fields, nil
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping", ErrMalformedBlock)
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		field, ok := ParseField(mapping.Content[i].Value)
		if !ok {
			continue
		}
		value, ok, err := valueFromNode(field, mapping.Content[i+1])
		if err != nil {
			return nil, err
		}
		if ok {
			fields[field] = value
		}
	}
	return fields, nil
}

func valueFromNode(field Field, n *yaml.Node) (Value, bool, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return Value{}, false, nil
	}

	switch field {
	case FieldDate:
		if n.Kind != yaml.ScalarNode {
			return Value{}, false, fmt.Errorf("%w: %s must be a scalar", ErrMalformedBlock, field)
		}
		return opaqueFromNode(n), true, nil
	case FieldDraft:
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, false, fmt.Errorf("%w: %s: %w", ErrMalformedBlock, field, err)
		}
		return Bool(b), true, nil
	}

	switch n.Kind {
	case yaml.ScalarNode:
		if field == FieldTags || field == FieldCategories {
			return List(n.Value), true, nil
		}
		return String(n.Value), true, nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return Value{}, false, fmt.Errorf("%w: %s items must be scalars", ErrMalformedBlock, field)
			}
			items = append(items, item.Value)
		}
		return List(items...), true, nil
	default:
		return Value{}, false, fmt.Errorf("%w: unsupported value for %s", ErrMalformedBlock, field)
	}
}

func parseTOML(block []byte) (map[Field]Value, error) {
	var raw map[string]interface{}
	if err := toml.Unmarshal(block, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBlock, err)
	}

	fields := make(map[Field]Value)
	for key, v := range raw {
		field, ok := ParseField(key)
		if !ok {
			continue
		}
		switch x := v.(type) {
		case string:
			if field == FieldTags || field == FieldCategories {
				fields[field] = List(x)
			} else if field == FieldDate {
				fields[field] = Opaque(x, "!!str")
			} else {
				fields[field] = String(x)
			}
		case bool:
			fields[field] = Bool(x)
		case []interface{}:
			items := make([]string, 0, len(x))
			for _, item := range x {
				items = append(items, fmt.Sprint(item))
			}
			fields[field] = List(items...)
		case time.Time:
			fields[field] = Opaque(x.Format(time.RFC3339), "!!timestamp")
		case toml.LocalDate, toml.LocalDateTime:
			fields[field] = Opaque(fmt.Sprint(x), "!!timestamp")
		default:
			return nil, fmt.Errorf("%w: unsupported value for %s", ErrMalformedBlock, field)
		}
	}
	return fields, nil
}
