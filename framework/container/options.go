package container

import (
	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
)

// Option configures a Container at construction.
type Option func(*options)

type options struct {
	id       string
	logger   *logrus.Logger
	registry metrics.Registry
}

// WithLogger sets the logrus logger. Defaults to logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics registers the container instruments in reg instead of a
// private registry.
func WithMetrics(reg metrics.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithID sets the identifier used in log fields. Defaults to a random UUID.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}
