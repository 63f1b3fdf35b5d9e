package plugin

import (
	pkglogger "github.com/damoang/angple-plugins/pkg/logger"
)

// Logger 플러그인 코어용 로거 인터페이스
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// NewDefaultLogger zerolog 기반 기본 로거 생성
func NewDefaultLogger(prefix string) Logger {
	return pkglogger.NewComponent(prefix)
}

// NopLogger 아무것도 기록하지 않는 로거
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
