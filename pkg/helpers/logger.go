package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a configured Logrus logger
func NewLogger(appName, env string) *logrus.Logger {
	return newLogger(os.Stdout, appName, env)
}

func newLogger(out io.Writer, appName, env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.WithFields(logrus.Fields{"app": appName, "env": env}).Info("logger initialized")
	return logger
}

// NewDiscardLogger is used by tests and tools that must stay quiet.
func NewDiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// LogError Convenience methods to keep a unified logging interface
func LogError(logger logrus.FieldLogger, msg string, err error, fields logrus.Fields) {
	logger.WithFields(withErr(fields, err)).Error(msg)
}

// LogWarn is for best-effort work that failed without failing the request.
func LogWarn(logger logrus.FieldLogger, msg string, err error, fields logrus.Fields) {
	logger.WithFields(withErr(fields, err)).Warn(msg)
}

func LogInfo(logger logrus.FieldLogger, msg string, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	logger.WithFields(fields).Info(msg)
}

func withErr(fields logrus.Fields, err error) logrus.Fields {
	out := logrus.Fields{}
	for k, v := range fields {
		out[k] = v
	}
	if err != nil {
		out["error"] = err.Error()
	}
	return out
}
