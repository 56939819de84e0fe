package retry

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// Class 错误分类
type Class int

const (
	// Retryable 超时、限流、临时网络错误
	Retryable Class = iota
	// Fatal 鉴权失败、请求格式错误，重试无意义
	Fatal
)

func (c Class) String() string {
	if c == Fatal {
		return "fatal"
	}
	return "retryable"
}

// Classifier 判断一次失败能否重试
type Classifier func(err error) Class

// StatusCoder 携带 HTTP 状态码的错误
type StatusCoder interface {
	StatusCode() int
}

var statusPattern = regexp.MustCompile(`(?i)(?:status code:?|error|status)\s*[:=]?\s*(\d{3})\b`)

var fatalPatterns = []string{
	"unauthorized",
	"forbidden",
	"invalid api key",
	"api key not valid",
	"permission denied",
	"invalid_argument",
	"malformed",
}

var retryablePatterns = []string{
	"timeout",
	"timed out",
	"rate limit",
	"rate_limit",
	"too many requests",
	"quota",
	"resource_exhausted",
	"unavailable",
	"connection reset",
	"connection refused",
	"temporary",
	"eof",
}

// Classify 默认分类规则，无法识别的错误按可重试处理
func Classify(err error) Class {
	if err == nil {
		return Retryable
	}
	if errors.Is(err, context.Canceled) {
		return Fatal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Retryable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Retryable
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return ClassifyStatus(sc.StatusCode())
	}

	msg := strings.ToLower(err.Error())
	if m := statusPattern.FindStringSubmatch(msg); m != nil {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil && code >= 400 {
			return ClassifyStatus(code)
		}
	}
	for _, p := range fatalPatterns {
		if strings.Contains(msg, p) {
			return Fatal
		}
	}
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return Retryable
		}
	}
	return Retryable
}

// ClassifyStatus 按 HTTP 状态码分类
func ClassifyStatus(code int) Class {
	switch {
	case code == 408, code == 425, code == 429, code >= 500:
		return Retryable
	case code >= 400:
		return Fatal
	default:
		return Retryable
	}
}
