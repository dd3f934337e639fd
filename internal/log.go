package internal

import (
	"sync"

	"go.uber.org/zap"
)

type logger struct {
	filename string
	*zap.SugaredLogger
}

var (
	loggerOnce sync.Once
	appLogger  *logger
)

// GetLogger returns the process-wide sugared logger.
func GetLogger() *logger {
	loggerOnce.Do(func() {
		appLogger = initLogger("cubedr4ft.log")
	})
	return appLogger
}

func initLogger(filename string) *logger {
	prod, _ := zap.NewDevelopment()
	return &logger{
		filename:      filename,
		SugaredLogger: prod.Sugar(),
	}
}
