package prose

import (
	"fmt"

	"github.com/nerdneilsfield/go-md-translator/pkg/language"
)

// 原文统一放在 <text> 块中，便于模型区分指令与待翻译内容
const textBlock = "\n\n<text>\n%s\n</text>"

// BuildTitlePrompt 构建标题翻译提示词
func BuildTitlePrompt(text string, source, target language.Info) string {
	return fmt.Sprintf(`You are an expert translator specializing in content localization and digital media. `+
		`Translate the following blog post title from %[1]s to %[2]s, ensuring it sounds natural, engaging, and idiomatic in %[2]s. `+
		`Maintain the tone and intent of the original title, whether it is informative, persuasive, or creative. `+
		`The translation should be concise, culturally appropriate, and appealing to native speakers.

Return only the translated title in %[2]s on a single line, without double quotes, with no explanation or additional text.`+textBlock,
		source.Name, target.Name, text)
}

// BuildDescriptionPrompt 构建摘要翻译提示词
func BuildDescriptionPrompt(text string, source, target language.Info) string {
	return fmt.Sprintf(`You are an expert translator specializing in content localization and digital media. `+
		`Translate the following blog post description from %[1]s to %[2]s. `+
		`Keep it natural and idiomatic in %[2]s, preserve its meaning and tone, and keep roughly the same length so it still works as a search snippet.

Return only the translated description in %[2]s as a single paragraph, without double quotes, with no explanation or additional text.`+textBlock,
		source.Name, target.Name, text)
}

// BuildContentPrompt 构建正文翻译提示词
func BuildContentPrompt(text string, source, target language.Info) string {
	return fmt.Sprintf(`You are a professional technical translator. Translate the following Markdown document from %[1]s to %[2]s.

Rules:
1. Translate only natural-language prose.
2. Preserve fenced code blocks, inline code, file paths, URLs, HTML tags and other technical tokens exactly as they are.
3. Preserve the document structure: headings, lists, tables, blank lines, indentation and all Markdown syntax.
4. Do not add, remove or reorder content.

Return only the translated document, with no explanation or additional text.`+textBlock,
		source.Name, target.Name, text)
}
