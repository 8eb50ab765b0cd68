// Package logging 初始化进程级 zerolog 日志
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel 把配置字符串映射为 zerolog 级别，未知值视为 info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "DISABLED", "OFF":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Setup 创建写到 out 的控制台日志；file 非 nil 时同时写一份无颜色副本
func Setup(level string, out io.Writer, file io.Writer) zerolog.Logger {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	var w io.Writer = zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	if file != nil {
		w = zerolog.MultiLevelWriter(
			w,
			zerolog.ConsoleWriter{
				Out:        file,
				TimeFormat: time.RFC3339,
				NoColor:    true,
			},
		)
	}

	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// OpenFile 以追加方式打开可选日志文件，路径为空时返回 nil
func OpenFile(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
