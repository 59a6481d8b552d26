package cli

import (
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/nerdneilsfield/go-md-translator/pkg/language"
)

// maxSuggestions 最多给出的建议数
const maxSuggestions = 3

// suggestLanguages 为无效代码给出最接近的受支持语言
func suggestLanguages(input string) []language.Info {
	query := strings.ToLower(strings.TrimSpace(input))
	if query == "" {
		return nil
	}

	type candidate struct {
		info     language.Info
		distance int
	}
	var candidates []candidate

	for _, info := range language.Supported() {
		code := string(info.Code)
		distance := fuzzy.LevenshteinDistance(query, code)

		// 名称子序列匹配（"span" → Spanish）
		if len(query) > 2 && fuzzy.MatchNormalizedFold(query, info.Name) {
			distance = 0
		}
		if distance <= 1 {
			candidates = append(candidates, candidate{info: info, distance: distance})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}

	out := make([]language.Info, len(candidates))
	for i, c := range candidates {
		out[i] = c.info
	}
	return out
}

// renderLanguages 以表格形式列出支持的语言
func renderLanguages(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Supported Languages")
	tw.AppendHeader(table.Row{"Code", "Language", "Script"})
	for _, info := range language.Supported() {
		tw.AppendRow(table.Row{info.Code, info.Name, info.Script})
	}
	tw.Render()
}
