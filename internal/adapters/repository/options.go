package repository

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	tablePrefix string
}

// WithTablePrefix prepends prefix to every physical table name, e.g. "prod-".
func WithTablePrefix(prefix string) Option {
	return func(o *options) {
		o.tablePrefix = prefix
	}
}

func collectOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) physical(t Table) string {
	return o.tablePrefix + string(t)
}
