// 包 logger：进程级日志器的初始化与获取；级别与格式来自配置（LOG_LEVEL/LOG_FORMAT）
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// ParseLevel：debug|info|warn|error，未知值回退 info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Setup：按环境变量初始化默认日志器
// 约束：输出固定为标准错误；文件轮转与外部采集由部署层处理
func Setup() *slog.Logger {
	return SetupWith(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// SetupWith：显式指定输出、级别与格式（json|text）
func SetupWith(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l := slog.New(h)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	return l
}

// L：获取默认日志器；未初始化时按环境变量初始化
func L() *slog.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		return Setup()
	}
	return l
}

// Stage：带 stage 属性的子日志器，便于按流水线阶段过滤
func Stage(name string) *slog.Logger { return L().With("stage", name) }
