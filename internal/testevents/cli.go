package testevents

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/hangout/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends log output to stdout and, when logFile is set, to
// that file as well. The returned func closes the file.
func SetupLogging(logFile string) (func() error, error) {
	if logFile == "" {
		return func() error { return nil }, logger.Init()
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file.Close, nil
}
