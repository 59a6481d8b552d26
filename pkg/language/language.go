// Package language 定义受支持的语言集合及其书写系统
package language

import (
	"fmt"
	"sort"
	"strings"

	xlanguage "golang.org/x/text/language"
)

// Code 语言代码（如 "en"、"fr"）
type Code string

// Script 书写系统
type Script string

const (
	ScriptLatin      Script = "Latn"
	ScriptCyrillic   Script = "Cyrl"
	ScriptGreek      Script = "Grek"
	ScriptJapanese   Script = "Jpan"
	ScriptHan        Script = "Hans"
	ScriptHangul     Script = "Hang"
	ScriptArabic     Script = "Arab"
	ScriptDevanagari Script = "Deva"
	ScriptHebrew     Script = "Hebr"
	ScriptThai       Script = "Thai"
)

// Info 语言信息
type Info struct {
	Code   Code
	Name   string
	Script Script
}

// IsLatin 是否为拉丁字母书写
func (i Info) IsLatin() bool {
	return i.Script == ScriptLatin
}

func (i Info) String() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.Code)
}

// supported 受支持语言的封闭集合
var supported = map[Code]Info{
	"en": {Code: "en", Name: "English", Script: ScriptLatin},
	"es": {Code: "es", Name: "Spanish", Script: ScriptLatin},
	"fr": {Code: "fr", Name: "French", Script: ScriptLatin},
	"de": {Code: "de", Name: "German", Script: ScriptLatin},
	"it": {Code: "it", Name: "Italian", Script: ScriptLatin},
	"pt": {Code: "pt", Name: "Portuguese", Script: ScriptLatin},
	"nl": {Code: "nl", Name: "Dutch", Script: ScriptLatin},
	"pl": {Code: "pl", Name: "Polish", Script: ScriptLatin},
	"sv": {Code: "sv", Name: "Swedish", Script: ScriptLatin},
	"tr": {Code: "tr", Name: "Turkish", Script: ScriptLatin},
	"id": {Code: "id", Name: "Indonesian", Script: ScriptLatin},
	"vi": {Code: "vi", Name: "Vietnamese", Script: ScriptLatin},
	"ru": {Code: "ru", Name: "Russian", Script: ScriptCyrillic},
	"uk": {Code: "uk", Name: "Ukrainian", Script: ScriptCyrillic},
	"bg": {Code: "bg", Name: "Bulgarian", Script: ScriptCyrillic},
	"el": {Code: "el", Name: "Greek", Script: ScriptGreek},
	"ja": {Code: "ja", Name: "Japanese", Script: ScriptJapanese},
	"zh": {Code: "zh", Name: "Chinese", Script: ScriptHan},
	"ko": {Code: "ko", Name: "Korean", Script: ScriptHangul},
	"ar": {Code: "ar", Name: "Arabic", Script: ScriptArabic},
	"hi": {Code: "hi", Name: "Hindi", Script: ScriptDevanagari},
	"he": {Code: "he", Name: "Hebrew", Script: ScriptHebrew},
	"th": {Code: "th", Name: "Thai", Script: ScriptThai},
}

// Lookup 查找语言信息，接受大小写不敏感的代码或 BCP 47 标签（区域部分会被忽略）
func Lookup(code string) (Info, error) {
	normalized, err := Normalize(code)
	if err != nil {
		return Info{}, err
	}
	info, ok := supported[normalized]
	if !ok {
		return Info{}, &UnsupportedError{Code: code}
	}
	return info, nil
}

// MustLookup 查找语言信息，失败时 panic
func MustLookup(code string) Info {
	info, err := Lookup(code)
	if err != nil {
		panic(err)
	}
	return info
}

// Normalize 将输入规范化为基础语言代码
func Normalize(code string) (Code, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", &UnsupportedError{Code: code}
	}

	// 已经是受支持的代码时直接返回，避免 x/text 的别名映射（如 "iw" → "he"）改变结果
	lower := Code(strings.ToLower(trimmed))
	if _, ok := supported[lower]; ok {
		return lower, nil
	}

	tag, err := xlanguage.Parse(trimmed)
	if err != nil {
		return "", &UnsupportedError{Code: code}
	}
	base, _ := tag.Base()
	return Code(base.String()), nil
}

// IsSupported 判断代码是否受支持
func IsSupported(code string) bool {
	_, err := Lookup(code)
	return err == nil
}

// Supported 返回按代码排序的受支持语言列表
func Supported() []Info {
	infos := make([]Info, 0, len(supported))
	for _, info := range supported {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Code < infos[j].Code
	})
	return infos
}

// SupportedCodes 返回排序后的受支持代码
func SupportedCodes() []string {
	infos := Supported()
	codes := make([]string, len(infos))
	for i, info := range infos {
		codes[i] = string(info.Code)
	}
	return codes
}

// UnsupportedError 不受支持的语言代码
type UnsupportedError struct {
	Code string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported language code %q", e.Code)
}
