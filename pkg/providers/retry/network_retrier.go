package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"syscall"
	"time"
)

// RetryConfig 重试配置
type RetryConfig struct {
	// 最大重试次数（不含首次请求）
	MaxRetries int `json:"max_retries"`

	// 初始延迟时间
	InitialDelay time.Duration `json:"initial_delay"`

	// 最大延迟时间
	MaxDelay time.Duration `json:"max_delay"`

	// 退避因子（指数退避）
	BackoffFactor float64 `json:"backoff_factor"`
}

// DefaultRetryConfig 返回默认重试配置
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    2,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
	}
}

// ErrorType 错误类型枚举
type ErrorType int

const (
	ErrorTypeNone          ErrorType = iota
	ErrorTypeNetwork                 // 网络瞬时错误
	ErrorTypeRetryableHTTP           // 429
	ErrorTypeServerError             // 5xx
	ErrorTypeClientError             // 4xx
	ErrorTypePermanent               // 其他错误
)

// Doer HTTP 客户端接口
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryableHTTPClient 可重试的HTTP客户端
type RetryableHTTPClient struct {
	client Doer
	config RetryConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryableHTTPClient 包装HTTP客户端，添加重试功能
func NewRetryableHTTPClient(client Doer, config RetryConfig) *RetryableHTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &RetryableHTTPClient{
		client: client,
		config: config,
		sleep:  sleepContext,
	}
}

// Do 执行HTTP请求（带重试）。
// 最后一次尝试的响应（即使是错误状态码）会原样返回，由调用方解析错误体。
func (rc *RetryableHTTPClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	for attempt := 0; ; attempt++ {
		attemptReq, err := rewind(req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := rc.client.Do(attemptReq)
		errorType := Classify(err, resp)
		if errorType == ErrorTypeNone || attempt >= rc.config.MaxRetries || !errorType.Retryable() {
			return resp, err
		}

		// 丢弃本次响应，准备重试
		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if err := rc.sleep(ctx, rc.delay(attempt+1)); err != nil {
			return nil, err
		}
	}
}

// delay 计算第 n 次重试前的等待时间
func (rc *RetryableHTTPClient) delay(n int) time.Duration {
	factor := rc.config.BackoffFactor
	if factor <= 1.0 {
		factor = 2.0
	}
	d := time.Duration(float64(rc.config.InitialDelay) * math.Pow(factor, float64(n-1)))
	if rc.config.MaxDelay > 0 && d > rc.config.MaxDelay {
		d = rc.config.MaxDelay
	}
	return d
}

// Retryable 该类错误是否值得重试
func (t ErrorType) Retryable() bool {
	switch t {
	case ErrorTypeNetwork, ErrorTypeRetryableHTTP, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// Classify 分类错误
func Classify(err error, resp *http.Response) ErrorType {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return ErrorTypePermanent
		}
		if isNetworkError(err) {
			return ErrorTypeNetwork
		}
		return ErrorTypePermanent
	}

	if resp == nil {
		return ErrorTypePermanent
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorTypeRetryableHTTP
	case resp.StatusCode >= 500:
		return ErrorTypeServerError
	case resp.StatusCode >= 400:
		return ErrorTypeClientError
	}
	return ErrorTypeNone
}

// isNetworkError 判断是否为网络错误（含超时）
func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// rewind 为第 attempt 次尝试准备请求，重新获取请求体
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed for retry")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
