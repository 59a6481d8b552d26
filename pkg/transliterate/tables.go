package transliterate

import (
	"regexp"

	"github.com/nerdneilsfield/go-md-translator/pkg/language"
)

var tables = map[language.Script]*Table{
	language.ScriptCyrillic: NewTable(language.ScriptCyrillic, cyrillic),
	language.ScriptGreek:    greekTable(),
	language.ScriptJapanese: NewTable(language.ScriptJapanese, katakana()),
}

var cyrillic = map[string]string{
	"shch": "щ",
	"zh":   "ж",
	"kh":   "х",
	"ts":   "ц",
	"ch":   "ч",
	"sh":   "ш",
	"yu":   "ю",
	"ya":   "я",
	"yo":   "ё",
	"a":    "а",
	"b":    "б",
	"c":    "к",
	"d":    "д",
	"e":    "е",
	"f":    "ф",
	"g":    "г",
	"h":    "х",
	"i":    "и",
	"j":    "дж",
	"k":    "к",
	"l":    "л",
	"m":    "м",
	"n":    "н",
	"o":    "о",
	"p":    "п",
	"q":    "к",
	"r":    "р",
	"s":    "с",
	"t":    "т",
	"u":    "у",
	"v":    "в",
	"w":    "в",
	"x":    "кс",
	"y":    "ы",
	"z":    "з",
}

var greek = map[string]string{
	"th": "θ",
	"ch": "χ",
	"ps": "ψ",
	"ph": "φ",
	"ks": "ξ",
	"a":  "α",
	"b":  "β",
	"c":  "κ",
	"d":  "δ",
	"e":  "ε",
	"f":  "φ",
	"g":  "γ",
	"h":  "χ",
	"i":  "ι",
	"j":  "τζ",
	"k":  "κ",
	"l":  "λ",
	"m":  "μ",
	"n":  "ν",
	"o":  "ο",
	"p":  "π",
	"q":  "κ",
	"r":  "ρ",
	"s":  "σ",
	"t":  "τ",
	"u":  "ου",
	"v":  "β",
	"w":  "ω",
	"x":  "ξ",
	"y":  "υ",
	"z":  "ζ",
}

// finalSigma 词尾的 σ 写作 ς
var finalSigma = regexp.MustCompile(`σ(\P{L}|$)`)

func greekTable() *Table {
	t := NewTable(language.ScriptGreek, greek)
	t.finalize = func(s string) string {
		return finalSigma.ReplaceAllString(s, "ς$1")
	}
	return t
}

// katakana 由罗马字音节表生成片假名映射
func katakana() map[string]string {
	vowels := []string{"a", "i", "u", "e", "o"}
	rows := map[string][5]string{
		"":   {"ア", "イ", "ウ", "エ", "オ"},
		"k":  {"カ", "キ", "ク", "ケ", "コ"},
		"c":  {"カ", "キ", "ク", "ケ", "コ"},
		"g":  {"ガ", "ギ", "グ", "ゲ", "ゴ"},
		"s":  {"サ", "シ", "ス", "セ", "ソ"},
		"z":  {"ザ", "ジ", "ズ", "ゼ", "ゾ"},
		"t":  {"タ", "ティ", "トゥ", "テ", "ト"},
		"d":  {"ダ", "ディ", "ドゥ", "デ", "ド"},
		"n":  {"ナ", "ニ", "ヌ", "ネ", "ノ"},
		"h":  {"ハ", "ヒ", "フ", "ヘ", "ホ"},
		"b":  {"バ", "ビ", "ブ", "ベ", "ボ"},
		"p":  {"パ", "ピ", "プ", "ペ", "ポ"},
		"f":  {"ファ", "フィ", "フ", "フェ", "フォ"},
		"v":  {"ヴァ", "ヴィ", "ヴ", "ヴェ", "ヴォ"},
		"m":  {"マ", "ミ", "ム", "メ", "モ"},
		"y":  {"ヤ", "イ", "ユ", "イェ", "ヨ"},
		"r":  {"ラ", "リ", "ル", "レ", "ロ"},
		"l":  {"ラ", "リ", "ル", "レ", "ロ"},
		"w":  {"ワ", "ウィ", "ウ", "ウェ", "ウォ"},
		"j":  {"ジャ", "ジ", "ジュ", "ジェ", "ジョ"},
		"q":  {"クァ", "クィ", "ク", "クェ", "クォ"},
		"sh": {"シャ", "シ", "シュ", "シェ", "ショ"},
		"ch": {"チャ", "チ", "チュ", "チェ", "チョ"},
		"ts": {"ツァ", "ツィ", "ツ", "ツェ", "ツォ"},
		"th": {"サ", "シ", "ス", "セ", "ソ"},
	}

	mapping := make(map[string]string)
	for consonant, kana := range rows {
		for i, vowel := range vowels {
			mapping[consonant+vowel] = kana[i]
		}
	}

	// 单独出现的辅音
	lone := map[string]string{
		"k": "ク", "c": "ク", "g": "グ", "s": "ス", "z": "ズ",
		"t": "ト", "d": "ド", "n": "ン", "h": "", "b": "ブ",
		"p": "プ", "f": "フ", "v": "ヴ", "m": "ム", "y": "イ",
		"r": "ル", "l": "ル", "w": "ウ", "j": "ジ", "q": "ク",
		"x": "クス", "sh": "シュ", "ch": "チ", "ts": "ツ", "th": "ス",
		"ck": "ック",
	}
	for key, kana := range lone {
		mapping[key] = kana
	}
	return mapping
}
