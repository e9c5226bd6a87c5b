package logger

import (
	"go.uber.org/zap"
)

// New builds the process logger: JSON at info level in production, a
// console encoder at debug level everywhere else.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
