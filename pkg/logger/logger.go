package logger

import (
	"os"

	"go.uber.org/zap"
)

// New builds the process-wide zap logger. Development output when APP_ENV is
// not "production".
func New() *zap.Logger {
	if os.Getenv("APP_ENV") == "production" {
		l, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return l
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return l
}
