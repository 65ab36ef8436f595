package log

import (
	"go.uber.org/zap"
)

// Init builds the process-wide zap logger and installs it as the global.
// prod selects the production JSON config; dev builds get the console one.
func Init(prod bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if prod {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

// L returns the global logger.
func L() *zap.Logger { return zap.L() }
