package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nerdneilsfield/go-md-translator/pkg/language"
)

// OutputPath 推导输出路径：优先替换路径中的源语言目录，否则使用 Hugo 的文件名后缀约定
func OutputPath(input string, source, target language.Code) (string, error) {
	if source == target {
		return "", fmt.Errorf("source and target language are both %q", source)
	}

	clean := filepath.Clean(input)
	segments := strings.Split(clean, string(filepath.Separator))
	for i := 0; i < len(segments)-1; i++ {
		if segments[i] == string(source) {
			segments[i] = string(target)
			return strings.Join(segments, string(filepath.Separator)), nil
		}
	}

	dir, file := filepath.Split(clean)
	ext := filepath.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	if suffix := filepath.Ext(stem); suffix != "" && strings.EqualFold(suffix[1:], string(source)) {
		stem = strings.TrimSuffix(stem, suffix)
	}
	return filepath.Join(dir, stem+"."+string(target)+ext), nil
}
