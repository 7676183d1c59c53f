package ingest

// DefaultLabelField is the label column used when WithLabelField is not given.
const DefaultLabelField = "date"

// DefaultTieSeparator separates tied participant IDs inside one CSV cell.
const DefaultTieSeparator = "|"

// Option applies a configuration option to a reader.
type Option func(*options)

type options struct {
	labelField   string
	tieSeparator string
}

func newOptions(opts []Option) options {
	o := options{
		labelField:   DefaultLabelField,
		tieSeparator: DefaultTieSeparator,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLabelField sets the name of the event label field.
func WithLabelField(field string) Option {
	return func(o *options) {
		if field != "" {
			o.labelField = field
		}
	}
}

// WithTieSeparator sets the separator between tied IDs in a CSV cell.
func WithTieSeparator(sep string) Option {
	return func(o *options) {
		if sep != "" {
			o.tieSeparator = sep
		}
	}
}
