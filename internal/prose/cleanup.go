package prose

import (
	"strings"

	"github.com/dlclark/regexp2"
)

var (
	// 推理模型的思考块，支持常见标签名
	reasoningPattern = regexp2.MustCompile(`(?s)<(think|thinking|reasoning)>.*?</\1>`, regexp2.IgnoreCase)
	// 未闭合的思考块，只会出现在输出开头
	danglingReasoningPattern = regexp2.MustCompile(`(?s)^\s*<(think|thinking|reasoning)>.*$`, regexp2.IgnoreCase)
	// 模型常在结果前加上的标签
	labelPattern = regexp2.MustCompile(`^(?:translated\s+)?(?:title|description|translation|answer)\s*(?:\([^)]*\))?\s*:\s*`, regexp2.IgnoreCase)
	// 一对包裹整段文本的引号
	wrappingQuotesPattern = regexp2.MustCompile(`^(["“„«'])(?<inner>.+)["”»']$`, regexp2.Singleline)
	// 句末单个句点，不影响省略号
	trailingPeriodPattern = regexp2.MustCompile(`(?<!\.)\.$`, regexp2.None)
)

var doubleQuotes = strings.NewReplacer(`"`, "'", "“", "'", "”", "'", "„", "'")

// StripReasoning 移除推理模型输出中的思考过程
func StripReasoning(text string) string {
	out, err := reasoningPattern.Replace(text, "", -1, -1)
	if err != nil {
		return text
	}
	if dangling, err := danglingReasoningPattern.MatchString(out); err == nil && dangling {
		return ""
	}
	return strings.TrimSpace(out)
}

// NormalizeQuotes 将所有双引号替换为单引号
func NormalizeQuotes(text string) string {
	return doubleQuotes.Replace(text)
}

// cleanTitle 标题后处理：单行、无标签、无包裹引号
func cleanTitle(source, translated string) string {
	return cleanShort(source, firstLine(translated))
}

// cleanDescription 摘要后处理：合并为单段
func cleanDescription(source, translated string) string {
	return cleanShort(source, strings.Join(strings.Fields(translated), " "))
}

func cleanShort(source, text string) string {
	text = strings.TrimSpace(text)
	src := strings.TrimSpace(source)

	// 原文本身带标签时保留
	if labeled, err := labelPattern.MatchString(src); err == nil && !labeled {
		if out, err := labelPattern.Replace(text, "", 0, 1); err == nil {
			text = strings.TrimSpace(out)
		}
	}
	if !hasWrappingQuotes(src) {
		text = stripWrappingQuotes(text)
	}
	text = NormalizeQuotes(text)

	if !strings.HasSuffix(src, ".") {
		if out, err := trailingPeriodPattern.Replace(text, "", 0, 1); err == nil {
			text = out
		}
	}
	return strings.TrimSpace(text)
}

func hasWrappingQuotes(text string) bool {
	return stripWrappingQuotes(text) != text
}

func stripWrappingQuotes(text string) string {
	m, err := wrappingQuotesPattern.FindStringMatch(text)
	if err != nil || m == nil {
		return text
	}
	open := m.GroupByNumber(1).String()
	closing := text[len(text)-len(lastRune(text)):]
	inner := m.GroupByName("inner").String()
	if !quotesPair(open, closing) || strings.Contains(inner, open) || strings.Contains(inner, closing) {
		return text
	}
	return strings.TrimSpace(inner)
}

func quotesPair(open, closing string) bool {
	switch open {
	case `"`:
		return closing == `"` || closing == "”"
	case "“", "„":
		return closing == "”" || closing == `"`
	case "«":
		return closing == "»"
	case "'":
		return closing == "'"
	}
	return false
}

func lastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return ""
	}
	return string(r[len(r)-1])
}

func firstLine(text string) string {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
