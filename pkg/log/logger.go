package log

// Logger prefixes every message, e.g. "[Scheduler] ", so records of one
// component can be grepped out of the shared output.
type Logger interface {
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	// LogIfError writes "<msg> : <err>" at error level when err is not nil
	LogIfError(err error, msg string)
	WithPrefix(prefix string) Logger
}

type prefixed string

func WithLogger(prefix string) Logger {
	return prefixed(prefix)
}

func (p prefixed) WithPrefix(prefix string) Logger {
	return p + prefixed(prefix)
}

func (p prefixed) Errorf(format string, v ...interface{}) {
	sugar.Errorf(string(p)+format, v...)
}

func (p prefixed) Warnf(format string, v ...interface{}) {
	sugar.Warnf(string(p)+format, v...)
}

func (p prefixed) Infof(format string, v ...interface{}) {
	sugar.Infof(string(p)+format, v...)
}

func (p prefixed) Debugf(format string, v ...interface{}) {
	sugar.Debugf(string(p)+format, v...)
}

func (p prefixed) LogIfError(err error, msg string) {
	if err == nil {
		return
	}
	sugar.Errorf("%s%s : %v", string(p), msg, err)
}
