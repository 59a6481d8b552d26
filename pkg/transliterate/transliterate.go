// Package transliterate 将拉丁字母文本转写为目标语言的书写系统
//
// 转写能力在启动时按目标语言解析一次：拉丁文字目标为直通，已内置映射表的
// 书写系统使用表驱动转写，其他书写系统返回 Unavailable 并原样输出。
package transliterate

import (
	"strings"
	"unicode"

	"github.com/nerdneilsfield/go-md-translator/pkg/language"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Transliterator 转写接口
type Transliterator interface {
	// Transliterate 转写文本，无法处理的字符原样保留
	Transliterate(text string) string

	// Script 目标书写系统
	Script() language.Script

	// Available 是否真正具备转写能力
	Available() bool
}

// ForLanguage 根据目标语言选择转写实现
func ForLanguage(info language.Info, logger *zap.Logger) Transliterator {
	if logger == nil {
		logger = zap.NewNop()
	}

	if info.IsLatin() {
		return Passthrough{script: info.Script}
	}

	if table, ok := tables[info.Script]; ok {
		return table
	}

	logger.Warn("transliteration not available for target script, terms will pass through unchanged",
		zap.String("language", string(info.Code)),
		zap.String("script", string(info.Script)))
	return Unavailable{script: info.Script}
}

// Passthrough 拉丁文字目标语言的直通实现
type Passthrough struct {
	script language.Script
}

// Transliterate 原样返回
func (p Passthrough) Transliterate(text string) string { return text }

// Script 目标书写系统
func (p Passthrough) Script() language.Script { return p.script }

// Available 直通总是可用
func (p Passthrough) Available() bool { return true }

// Unavailable 不支持的书写系统
type Unavailable struct {
	script language.Script
}

// Transliterate 原样返回
func (u Unavailable) Transliterate(text string) string { return text }

// Script 目标书写系统
func (u Unavailable) Script() language.Script { return u.script }

// Available 不可用
func (u Unavailable) Available() bool { return false }

// Table 基于映射表的贪婪最长匹配转写
type Table struct {
	script  language.Script
	mapping map[string]string
	maxLen  int
	// finalize 对整体输出做书写系统相关的收尾处理
	finalize func(string) string
}

// NewTable 创建映射表转写器，映射表的键必须是小写拉丁字母序列
func NewTable(script language.Script, mapping map[string]string) *Table {
	t := &Table{script: script, mapping: mapping}
	for key := range mapping {
		if n := len([]rune(key)); n > t.maxLen {
			t.maxLen = n
		}
	}
	return t
}

// Script 目标书写系统
func (t *Table) Script() language.Script { return t.script }

// Available 映射表转写可用
func (t *Table) Available() bool { return true }

// Transliterate 转写文本
func (t *Table) Transliterate(text string) string {
	if text == "" {
		return ""
	}

	runes := stripLatinMarks(text)
	var b strings.Builder
	b.Grow(len(text) * 2)

	for i := 0; i < len(runes); {
		if !isASCIILetter(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}

		matched := false
		for n := t.maxLen; n > 0; n-- {
			if i+n > len(runes) || !allASCIILetters(runes[i:i+n]) {
				continue
			}
			key := strings.ToLower(string(runes[i : i+n]))
			out, ok := t.mapping[key]
			if !ok {
				continue
			}
			if unicode.IsUpper(runes[i]) {
				out = upperFirst(out)
			}
			b.WriteString(out)
			i += n
			matched = true
			break
		}
		if !matched {
			b.WriteRune(runes[i])
			i++
		}
	}

	result := norm.NFC.String(b.String())
	if t.finalize != nil {
		result = t.finalize(result)
	}
	return result
}

// stripLatinMarks 分解字符并去掉附着在拉丁字母上的变音符号（é → e），
// 其他书写系统的组合符号（如日文浊点）保留
func stripLatinMarks(text string) []rune {
	decomposed := []rune(norm.NFD.String(text))
	out := make([]rune, 0, len(decomposed))
	var base rune
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			if base != 0 && unicode.Is(unicode.Latin, base) {
				continue
			}
			out = append(out, r)
			continue
		}
		base = r
		out = append(out, r)
	}
	return out
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func allASCIILetters(runes []rune) bool {
	for _, r := range runes {
		if !isASCIILetter(r) {
			return false
		}
	}
	return true
}

func upperFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
