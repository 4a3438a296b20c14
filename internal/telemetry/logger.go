// internal/telemetry/logger.go
package telemetry

import "go.uber.org/zap"

var logger *zap.Logger = zap.NewNop()

// InitLogger installs the process-wide structured logger. production
// selects the JSON encoder chronoindexd runs with in deployment; the
// development encoder is used for local runs and tests.
func InitLogger(production bool) (*zap.Logger, error) {
	var l *zap.Logger
	var err error
	if production {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	logger = l
	return l, nil
}

// Logger returns the process-wide logger, defaulting to a no-op
// implementation until InitLogger has run.
func Logger() *zap.Logger { return logger }
