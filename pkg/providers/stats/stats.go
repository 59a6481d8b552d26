package stats

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"
)

// ProviderStats 单个提供商的调用统计
type ProviderStats struct {
	ProviderName       string           `json:"provider_name"`
	ModelName          string           `json:"model_name"`
	TotalRequests      int64            `json:"total_requests"`
	SuccessfulRequests int64            `json:"successful_requests"`
	FailedRequests     int64            `json:"failed_requests"`
	TotalTokensIn      int64            `json:"total_tokens_in"`
	TotalTokensOut     int64            `json:"total_tokens_out"`
	MinLatency         time.Duration    `json:"min_latency"`
	MaxLatency         time.Duration    `json:"max_latency"`
	TotalLatency       time.Duration    `json:"total_latency"`
	ErrorTypes         map[string]int64 `json:"error_types"`
	ReasoningTagIssues int64            `json:"reasoning_tag_issues"`
	EchoResponses      int64            `json:"echo_responses"`

	mu sync.Mutex
}

// AverageLatency 平均延迟
func (ps *ProviderStats) AverageLatency() time.Duration {
	if ps.TotalRequests == 0 {
		return 0
	}
	return ps.TotalLatency / time.Duration(ps.TotalRequests)
}

// SuccessRate 成功率（百分比）
func (ps *ProviderStats) SuccessRate() float64 {
	if ps.TotalRequests == 0 {
		return 0
	}
	return float64(ps.SuccessfulRequests) / float64(ps.TotalRequests) * 100
}

// RequestResult 单次请求结果
type RequestResult struct {
	Success          bool
	Latency          time.Duration
	TokensIn         int
	TokensOut        int
	ErrorType        string
	HasReasoningTags bool
	Echo             bool
}

// StatsManager 统计管理器
type StatsManager struct {
	stats  map[string]*ProviderStats // key: provider:model
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewStatsManager 创建统计管理器
func NewStatsManager(logger *zap.Logger) *StatsManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsManager{
		stats:  make(map[string]*ProviderStats),
		logger: logger,
	}
}

func (sm *StatsManager) getKey(provider, model string) string {
	return fmt.Sprintf("%s:%s", provider, model)
}

func (sm *StatsManager) getOrCreateStats(provider, model string) *ProviderStats {
	key := sm.getKey(provider, model)

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if stats, exists := sm.stats[key]; exists {
		return stats
	}

	stats := &ProviderStats{
		ProviderName: provider,
		ModelName:    model,
		ErrorTypes:   make(map[string]int64),
	}
	sm.stats[key] = stats
	return stats
}

// RecordRequest 记录请求结果
func (sm *StatsManager) RecordRequest(provider, model string, result RequestResult) {
	stats := sm.getOrCreateStats(provider, model)

	stats.mu.Lock()
	defer stats.mu.Unlock()

	stats.TotalRequests++
	if result.Success {
		stats.SuccessfulRequests++
	} else {
		stats.FailedRequests++
		if result.ErrorType != "" {
			stats.ErrorTypes[result.ErrorType]++
		}
	}

	stats.TotalTokensIn += int64(result.TokensIn)
	stats.TotalTokensOut += int64(result.TokensOut)

	stats.TotalLatency += result.Latency
	if stats.TotalRequests == 1 || result.Latency < stats.MinLatency {
		stats.MinLatency = result.Latency
	}
	if result.Latency > stats.MaxLatency {
		stats.MaxLatency = result.Latency
	}

	if result.HasReasoningTags {
		stats.ReasoningTagIssues++
	}
	if result.Echo {
		stats.EchoResponses++
	}

	sm.logger.Debug("backend call recorded",
		zap.String("provider", provider),
		zap.String("model", model),
		zap.Bool("success", result.Success),
		zap.Duration("latency", result.Latency),
		zap.String("error_type", result.ErrorType))
}

// GetStats 获取指定Provider的统计副本
func (sm *StatsManager) GetStats(provider, model string) *ProviderStats {
	sm.mu.RLock()
	stats, exists := sm.stats[sm.getKey(provider, model)]
	sm.mu.RUnlock()
	if !exists {
		return nil
	}
	return stats.snapshot()
}

// GetAllStats 按提供商名称排序返回全部统计副本
func (sm *StatsManager) GetAllStats() []*ProviderStats {
	sm.mu.RLock()
	all := make([]*ProviderStats, 0, len(sm.stats))
	for _, stats := range sm.stats {
		all = append(all, stats.snapshot())
	}
	sm.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].ProviderName != all[j].ProviderName {
			return all[i].ProviderName < all[j].ProviderName
		}
		return all[i].ModelName < all[j].ModelName
	})
	return all
}

func (ps *ProviderStats) snapshot() *ProviderStats {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	cp := &ProviderStats{
		ProviderName:       ps.ProviderName,
		ModelName:          ps.ModelName,
		TotalRequests:      ps.TotalRequests,
		SuccessfulRequests: ps.SuccessfulRequests,
		FailedRequests:     ps.FailedRequests,
		TotalTokensIn:      ps.TotalTokensIn,
		TotalTokensOut:     ps.TotalTokensOut,
		MinLatency:         ps.MinLatency,
		MaxLatency:         ps.MaxLatency,
		TotalLatency:       ps.TotalLatency,
		ErrorTypes:         make(map[string]int64, len(ps.ErrorTypes)),
		ReasoningTagIssues: ps.ReasoningTagIssues,
		EchoResponses:      ps.EchoResponses,
	}
	for k, v := range ps.ErrorTypes {
		cp.ErrorTypes[k] = v
	}
	return cp
}

// Render 以表格形式输出统计
func (sm *StatsManager) Render(w io.Writer) {
	all := sm.GetAllStats()
	if len(all) == 0 {
		fmt.Fprintln(w, "No backend calls recorded.")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Backend Statistics")
	tw.AppendHeader(table.Row{"Provider", "Model", "Requests", "Success%", "Failed", "Echo", "Avg Latency", "Max Latency", "Tokens In/Out"})

	for _, stats := range all {
		tw.AppendRow(table.Row{
			stats.ProviderName,
			stats.ModelName,
			stats.TotalRequests,
			fmt.Sprintf("%.1f%%", stats.SuccessRate()),
			stats.FailedRequests,
			stats.EchoResponses,
			stats.AverageLatency().Round(time.Millisecond),
			stats.MaxLatency.Round(time.Millisecond),
			fmt.Sprintf("%d/%d", stats.TotalTokensIn, stats.TotalTokensOut),
		})
	}
	tw.Render()
}
