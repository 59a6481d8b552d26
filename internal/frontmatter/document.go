package frontmatter

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Field 已知的前置元数据字段
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldDate        Field = "date"
	FieldDraft       Field = "draft"
	FieldAuthor      Field = "author"
	FieldTags        Field = "tags"
	FieldCategories  Field = "categories"
)

// CanonicalOrder 输出时的字段顺序
var CanonicalOrder = []Field{
	FieldTitle,
	FieldDescription,
	FieldDate,
	FieldDraft,
	FieldAuthor,
	FieldTags,
	FieldCategories,
}

// ParseField 将键名转换为已知字段
func ParseField(key string) (Field, bool) {
	f := Field(strings.ToLower(strings.TrimSpace(key)))
	for _, known := range CanonicalOrder {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// Kind 值类型
type Kind int

const (
	KindString Kind = iota
	KindList
	KindBool
	KindOpaque
)

// Value 字段值
type Value struct {
	Kind Kind
	Str  string
	List []string
	Bool bool

	// 仅 KindOpaque 使用，按原样输出
	tag   string
	style yaml.Style
}

// String 字符串值
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// List 列表值
func List(items ...string) Value {
	return Value{Kind: KindList, List: items}
}

// Bool 布尔值
func Bool(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// Opaque 不翻译、原样输出的值（如日期）
func Opaque(raw, tag string) Value {
	return Value{Kind: KindOpaque, Str: raw, tag: tag}
}

func opaqueFromNode(n *yaml.Node) Value {
	return Value{Kind: KindOpaque, Str: n.Value, tag: n.Tag, style: n.Style}
}

// Tag 原始 YAML 标签
func (v Value) Tag() string {
	return v.tag
}

// IsEmpty 判断值是否为空；布尔值永远不为空
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindBool:
		return false
	case KindList:
		for _, item := range v.List {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	default:
		return strings.TrimSpace(v.Str) == ""
	}
}

// FieldPolicy 每个字段是否参与输出
type FieldPolicy map[Field]bool

// DefaultPolicy 启用全部字段
func DefaultPolicy() FieldPolicy {
	policy := make(FieldPolicy, len(CanonicalOrder))
	for _, f := range CanonicalOrder {
		policy[f] = true
	}
	return policy
}

// Enabled 判断字段是否启用；未列出的字段视为禁用
func (p FieldPolicy) Enabled(f Field) bool {
	return p[f]
}

// Document 一篇 Markdown 文档
type Document struct {
	Path   string
	Fields map[Field]Value
	Body   string
}

// Get 获取字段值
func (d *Document) Get(f Field) (Value, bool) {
	v, ok := d.Fields[f]
	return v, ok
}

// Title 返回标题文本，缺失时为空
func (d *Document) Title() string {
	if v, ok := d.Fields[FieldTitle]; ok && v.Kind == KindString {
		return strings.TrimSpace(v.Str)
	}
	return ""
}
