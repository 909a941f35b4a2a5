package application

import (
	"errors"
	"time"

	"github.com/ark-network/raffle/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

const (
	maxRetries    = 5
	retryInterval = 100 * time.Millisecond
)

// logError logs validation failures at debug level and bugs at error level so
// that they can be told apart.
func logError(err error, format string, args ...interface{}) {
	entry := log.WithError(err)
	switch {
	case domain.IsValidationError(err):
		entry.Debugf(format, args...)
	case errors.Is(err, domain.ErrInvariantViolation):
		entry.Errorf(format, args...)
	default:
		entry.Warnf(format, args...)
	}
}

func withRetry(fn func() error) (err error) {
	for i := 0; i < maxRetries; i++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(retryInterval)
	}
	return err
}
