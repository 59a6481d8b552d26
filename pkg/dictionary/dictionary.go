// Package dictionary 加载用户维护的术语词典
//
// 词典按目标语言存放在同一目录下：<dir>/<lang>.csv 优先，其次 <dir>/<lang>.toml。
// 词典文件是可选的，找不到时返回空词典。
package dictionary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nerdneilsfield/go-md-translator/pkg/language"
	"golang.org/x/text/cases"
)

const (
	// TermColumn CSV 中源术语列名
	TermColumn = "term"
	// TranslationColumn CSV 中译文列名
	TranslationColumn = "translation"
)

// ErrMissingColumn CSV 缺少必需的列
var ErrMissingColumn = errors.New("dictionary is missing a required column")

// Dictionary 大小写不敏感的精确匹配词典，加载后只读
type Dictionary struct {
	entries map[string]string
	source  string
}

// New 使用给定的术语映射创建词典
func New(entries map[string]string) *Dictionary {
	d := &Dictionary{entries: make(map[string]string, len(entries))}
	for term, translation := range entries {
		d.add(term, translation)
	}
	return d
}

// Empty 返回空词典
func Empty() *Dictionary {
	return &Dictionary{entries: map[string]string{}}
}

// Fold 返回用于查找的规范化键
func Fold(term string) string {
	return cases.Fold().String(strings.TrimSpace(term))
}

func (d *Dictionary) add(term, translation string) {
	key := Fold(term)
	value := strings.TrimSpace(translation)
	if key == "" || value == "" {
		return
	}
	d.entries[key] = value
}

// Lookup 查找术语的译文
func (d *Dictionary) Lookup(term string) (string, bool) {
	if d == nil {
		return "", false
	}
	value, ok := d.entries[Fold(term)]
	return value, ok
}

// Len 词条数量
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Source 词典来源文件，空词典返回空字符串
func (d *Dictionary) Source() string {
	if d == nil {
		return ""
	}
	return d.source
}

// Path 返回目标语言对应的 CSV 词典路径
func Path(dir string, target language.Code) string {
	return filepath.Join(dir, string(target)+".csv")
}

// Load 加载目标语言的词典，文件不存在时返回空词典
func Load(dir string, target language.Code) (*Dictionary, error) {
	if dir == "" {
		return Empty(), nil
	}

	csvPath := Path(dir, target)
	if exists(csvPath) {
		return LoadCSV(csvPath)
	}

	tomlPath := filepath.Join(dir, string(target)+".toml")
	if exists(tomlPath) {
		return LoadTOML(tomlPath)
	}

	return Empty(), nil
}

// LoadCSV 从带表头的 CSV 文件加载词典
func LoadCSV(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer f.Close()

	d, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}
	d.source = path
	return d, nil
}

// ReadCSV 读取 CSV 词典，列顺序不限，多余的列会被忽略
func ReadCSV(r io.Reader) (*Dictionary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return Empty(), nil
	}
	if err != nil {
		return nil, err
	}

	termIdx, translationIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case TermColumn:
			termIdx = i
		case TranslationColumn:
			translationIdx = i
		}
	}
	if termIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, TermColumn)
	}
	if translationIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, TranslationColumn)
	}

	d := Empty()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if termIdx >= len(record) || translationIdx >= len(record) {
			continue
		}
		d.add(record[termIdx], record[translationIdx])
	}
	return d, nil
}

// tomlDictionary TOML 词典文件结构
type tomlDictionary struct {
	SourceLang   string            `toml:"source_lang"`
	TargetLang   string            `toml:"target_lang"`
	Translations map[string]string `toml:"translations"`
}

// LoadTOML 从 TOML 文件加载词典
func LoadTOML(path string) (*Dictionary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}

	var raw tomlDictionary
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dictionary %s: %w", path, err)
	}

	d := New(raw.Translations)
	d.source = path
	return d, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
