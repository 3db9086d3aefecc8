// Package log replaces the zap global logger on import.
// Packages that want logging just blank-import this package.
package log

import (
	"go.uber.org/zap"
)

func init() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}
