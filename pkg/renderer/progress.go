package renderer

import (
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/golang/glog"
	"golang.org/x/time/rate"
)

// glogLogger implements core.Logger on top of glog's info log
type glogLogger struct{}

func (glogLogger) Printf(format string, args ...interface{}) {
	glog.Infof(format, args...)
}

// NewDefaultLogger returns the logger used when none is configured
func NewDefaultLogger() core.Logger {
	return glogLogger{}
}

// ProgressReporter logs the number of scanlines left to render, at most once
// per interval. The first and last reports are always logged.
type ProgressReporter struct {
	logger  core.Logger
	limiter *rate.Limiter
}

// NewProgressReporter creates a reporter that logs through logger
func NewProgressReporter(logger core.Logger, interval time.Duration) *ProgressReporter {
	return &ProgressReporter{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Report records that remaining scanlines are still to be rendered
func (p *ProgressReporter) Report(remaining int) {
	if remaining > 1 && !p.limiter.Allow() {
		return
	}
	p.logger.Printf("Scanlines remaining: %d\n", remaining)
}
