package dispatch

import "github.com/logfan/logfan/core"

// LogOption customizes the record assembled by Log and the per-severity
// convenience methods.
type LogOption func(rec *core.Record)

// WithCategory sets the record's category, overriding the caller-package
// default.
func WithCategory(category string) LogOption {
	return func(rec *core.Record) { rec.Category = category }
}

// WithPipeline routes the record to the named pipeline instead of
// "default".
func WithPipeline(name string) LogOption {
	return func(rec *core.Record) { rec.Pipeline = name }
}

// WithTags attaches ordered free-form tags to the record.
func WithTags(tags ...string) LogOption {
	return func(rec *core.Record) { rec.Tags = tags }
}

// Log assembles a record at the given severity and dispatches it. The
// category defaults to the calling package unless WithCategory overrides
// it. The returned error is non-nil only in strict-unhandled mode.
func (d *Dispatcher) Log(level core.Level, msg string, opts ...LogOption) error {
	return d.log(level, msg, opts)
}

func (d *Dispatcher) log(level core.Level, msg string, opts []LogOption) error {
	rec := core.NewRecord(level, "", msg)
	for _, opt := range opts {
		opt(rec)
	}
	if rec.Category == "" {
		// 2 frames: log, the exported wrapper, then the user.
		rec.Category = core.CallerCategory(2)
	}

	_, err := d.Dispatch(rec)
	return err
}

// Trace logs at trace severity.
func (d *Dispatcher) Trace(msg string, opts ...LogOption) error {
	return d.log(core.TraceLevel, msg, opts)
}

// Debug logs at debug severity.
func (d *Dispatcher) Debug(msg string, opts ...LogOption) error {
	return d.log(core.DebugLevel, msg, opts)
}

// Info logs at info severity.
func (d *Dispatcher) Info(msg string, opts ...LogOption) error {
	return d.log(core.InfoLevel, msg, opts)
}

// Notice logs at notice severity.
func (d *Dispatcher) Notice(msg string, opts ...LogOption) error {
	return d.log(core.NoticeLevel, msg, opts)
}

// Warning logs at warning severity.
func (d *Dispatcher) Warning(msg string, opts ...LogOption) error {
	return d.log(core.WarningLevel, msg, opts)
}

// Error logs at error severity.
func (d *Dispatcher) Error(msg string, opts ...LogOption) error {
	return d.log(core.ErrorLevel, msg, opts)
}

// Critical logs at critical severity.
func (d *Dispatcher) Critical(msg string, opts ...LogOption) error {
	return d.log(core.CriticalLevel, msg, opts)
}

// Alert logs at alert severity.
func (d *Dispatcher) Alert(msg string, opts ...LogOption) error {
	return d.log(core.AlertLevel, msg, opts)
}

// Emergency logs at emergency severity.
func (d *Dispatcher) Emergency(msg string, opts ...LogOption) error {
	return d.log(core.EmergencyLevel, msg, opts)
}

// WillTrace reports whether a trace record would reach any binding.
func (d *Dispatcher) WillTrace(pipeline, category string) bool {
	return d.WillLog(pipeline, core.TraceLevel, category)
}

// WillDebug reports whether a debug record would reach any binding.
func (d *Dispatcher) WillDebug(pipeline, category string) bool {
	return d.WillLog(pipeline, core.DebugLevel, category)
}

// WillInfo reports whether an info record would reach any binding.
func (d *Dispatcher) WillInfo(pipeline, category string) bool {
	return d.WillLog(pipeline, core.InfoLevel, category)
}

// WillNotice reports whether a notice record would reach any binding.
func (d *Dispatcher) WillNotice(pipeline, category string) bool {
	return d.WillLog(pipeline, core.NoticeLevel, category)
}

// WillWarning reports whether a warning record would reach any binding.
func (d *Dispatcher) WillWarning(pipeline, category string) bool {
	return d.WillLog(pipeline, core.WarningLevel, category)
}

// WillError reports whether an error record would reach any binding.
func (d *Dispatcher) WillError(pipeline, category string) bool {
	return d.WillLog(pipeline, core.ErrorLevel, category)
}

// WillCritical reports whether a critical record would reach any binding.
func (d *Dispatcher) WillCritical(pipeline, category string) bool {
	return d.WillLog(pipeline, core.CriticalLevel, category)
}

// WillAlert reports whether an alert record would reach any binding.
func (d *Dispatcher) WillAlert(pipeline, category string) bool {
	return d.WillLog(pipeline, core.AlertLevel, category)
}

// WillEmergency reports whether an emergency record would reach any binding.
func (d *Dispatcher) WillEmergency(pipeline, category string) bool {
	return d.WillLog(pipeline, core.EmergencyLevel, category)
}
