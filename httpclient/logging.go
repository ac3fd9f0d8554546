package httpclient

import (
	"fmt"
)

// restyLogger routes resty's printf-style logs to Logger.
type restyLogger struct {
	l Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error(fmt.Sprintf(format, v...), nil)
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn(fmt.Sprintf(format, v...), nil)
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug(fmt.Sprintf(format, v...), nil)
}

// leveledLogger implements retryablehttp.LeveledLogger over Logger.
type leveledLogger struct {
	l Logger
}

func (ll leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	ll.l.Error(msg, nil, kvFields(keysAndValues))
}

func (ll leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	ll.l.Info(msg, nil, kvFields(keysAndValues))
}

// Debug logs at debug level; retryablehttp logs every attempt here.
func (ll leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	ll.l.Debug(msg, nil, kvFields(keysAndValues))
}

func (ll leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	ll.l.Warn(msg, nil, kvFields(keysAndValues))
}

func kvFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	if len(kv)%2 == 1 {
		fields["extra"] = kv[len(kv)-1]
	}
	return fields
}
