package benchmark

import (
	"io"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/logfan/logfan/adapter"
	"github.com/logfan/logfan/core"
	"github.com/logfan/logfan/dispatch"
	"github.com/logfan/logfan/filter"
	"github.com/logfan/logfan/formatter"
)

// ---------------------------------------------------------------------------
// Engine-only scenarios
// ---------------------------------------------------------------------------

func newDispatcher(b *testing.B, cfg dispatch.BindingConfig) *dispatch.Dispatcher {
	b.Helper()
	d := dispatch.New(dispatch.Config{})
	if _, err := d.Add(noopAdapter{}, cfg); err != nil {
		b.Fatal(err)
	}
	return d
}

func BenchmarkDispatchSync(b *testing.B) {
	d := newDispatcher(b, dispatch.BindingConfig{})
	defer d.Close()

	rec := core.NewRecord(core.InfoLevel, "bench", "info message")
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.Dispatch(rec)
	}
}

func BenchmarkDispatchFilteredOut(b *testing.B) {
	d := newDispatcher(b, dispatch.BindingConfig{
		Filter: filter.Spec{filter.Severity(core.OpGe, core.ErrorLevel)},
	})
	defer d.Close()

	rec := core.NewRecord(core.DebugLevel, "bench", "should be skipped")
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.Dispatch(rec)
	}
}

func BenchmarkDispatchFanOut(b *testing.B) {
	d := dispatch.New(dispatch.Config{})
	defer d.Close()
	for i := 0; i < 3; i++ {
		if _, err := d.Add(noopAdapter{}, dispatch.BindingConfig{}); err != nil {
			b.Fatal(err)
		}
	}

	rec := core.NewRecord(core.InfoLevel, "bench", "fan out")
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.Dispatch(rec)
	}
}

func BenchmarkDispatchAsync(b *testing.B) {
	d := newDispatcher(b, dispatch.BindingConfig{Async: true, QueueSize: 4096})
	defer d.Close()

	rec := core.NewRecord(core.InfoLevel, "bench", "queued message")
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.Dispatch(rec)
	}
}

func BenchmarkWillLog(b *testing.B) {
	d := newDispatcher(b, dispatch.BindingConfig{
		Filter: filter.Spec{filter.Severity(core.OpGe, core.WarningLevel)},
	})
	defer d.Close()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.WillLog("", core.DebugLevel, "bench")
	}
}

func BenchmarkLogConvenience(b *testing.B) {
	d := newDispatcher(b, dispatch.BindingConfig{})
	defer d.Close()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.Info("info message", dispatch.WithCategory("bench"))
	}
}

// ---------------------------------------------------------------------------
// Competitive scenarios - identical sink (io.Discard) for every framework
// ---------------------------------------------------------------------------

func newLogfanJSON(b *testing.B) *dispatch.Dispatcher {
	b.Helper()
	d := dispatch.New(dispatch.Config{})
	_, err := d.Add(adapter.NewWriter(io.Discard), dispatch.BindingConfig{
		Formatter: formatter.NewJSON(),
	})
	if err != nil {
		b.Fatal(err)
	}
	return d
}

func newZapLogger() *zap.Logger {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(io.Discard), zap.DebugLevel))
}

func newSlogLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newLogrusLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.DebugLevel)
	return l
}

func newZerologLogger() zerolog.Logger {
	return zerolog.New(io.Discard).With().Timestamp().Logger().Level(zerolog.DebugLevel)
}

func BenchmarkCompetitive_InfoJSON(b *testing.B) {
	b.Run("logfan", func(b *testing.B) {
		d := newLogfanJSON(b)
		defer d.Close()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			d.Info("info message", dispatch.WithCategory("bench"))
		}
	})

	b.Run("zap", func(b *testing.B) {
		l := newZapLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("info message")
		}
	})

	b.Run("slog", func(b *testing.B) {
		l := newSlogLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("info message")
		}
	})

	b.Run("logrus", func(b *testing.B) {
		l := newLogrusLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("info message")
		}
	})

	b.Run("zerolog", func(b *testing.B) {
		l := newZerologLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info().Msg("info message")
		}
	})
}

func BenchmarkCompetitive_DisabledLevel(b *testing.B) {
	b.Run("logfan", func(b *testing.B) {
		d := dispatch.New(dispatch.Config{})
		_, err := d.Add(adapter.NewWriter(io.Discard), dispatch.BindingConfig{
			Filter:    filter.Spec{filter.Severity(core.OpGe, core.ErrorLevel)},
			Formatter: formatter.NewJSON(),
		})
		if err != nil {
			b.Fatal(err)
		}
		defer d.Close()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			d.Debug("should be skipped", dispatch.WithCategory("bench"))
		}
	})

	b.Run("zap", func(b *testing.B) {
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		l := zap.New(zapcore.NewCore(enc, zapcore.AddSync(io.Discard), zap.ErrorLevel))
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Debug("should be skipped")
		}
	})

	b.Run("slog", func(b *testing.B) {
		l := slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Debug("should be skipped")
		}
	})

	b.Run("logrus", func(b *testing.B) {
		l := newLogrusLogger()
		l.SetLevel(logrus.ErrorLevel)
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Debug("should be skipped")
		}
	})

	b.Run("zerolog", func(b *testing.B) {
		l := zerolog.New(io.Discard).Level(zerolog.ErrorLevel)
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Debug().Msg("should be skipped")
		}
	})
}

func BenchmarkCompetitive_Parallel(b *testing.B) {
	b.Run("logfan", func(b *testing.B) {
		d := newLogfanJSON(b)
		defer d.Close()
		b.ResetTimer()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				d.Info("parallel log", dispatch.WithCategory("bench"))
			}
		})
	})

	b.Run("zap", func(b *testing.B) {
		l := newZapLogger()
		b.ResetTimer()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				l.Info("parallel log")
			}
		})
	})

	b.Run("slog", func(b *testing.B) {
		l := newSlogLogger()
		b.ResetTimer()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				l.Info("parallel log")
			}
		})
	})

	b.Run("logrus", func(b *testing.B) {
		l := newLogrusLogger()
		b.ResetTimer()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				l.Info("parallel log")
			}
		})
	})

	b.Run("zerolog", func(b *testing.B) {
		l := newZerologLogger()
		b.ResetTimer()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				l.Info().Msg("parallel log")
			}
		})
	})
}
