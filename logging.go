package momoto

import (
	"io"

	"github.com/zuclubit/momoto-sub008/logging"
)

// LoggingModule installs a default logger as a resource. Out and ErrOut
// default to stdout and stderr.
type LoggingModule struct {
	Prefix string
	Debug  bool
	Out    io.Writer
	ErrOut io.Writer
}

func (m LoggingModule) Install(e *Engine) error {
	e.AddResources(logging.New(logging.Options{
		Prefix: m.Prefix,
		Debug:  m.Debug,
		Out:    m.Out,
		ErrOut: m.ErrOut,
	}))
	return nil
}

// Logger returns the first Logger resource if present, otherwise a no-op logger.
// Safe to call at any time; never returns nil.
func (e *Engine) Logger() logging.Logger {
	if e == nil {
		return logging.NewNopLogger()
	}
	for _, r := range e.resources {
		if l, ok := r.(logging.Logger); ok {
			return l
		}
	}
	return logging.NewNopLogger()
}
