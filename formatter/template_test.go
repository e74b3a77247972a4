package formatter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logfan/logfan/core"
	"github.com/logfan/logfan/formatter"
)

func fixedRecord() *core.Record {
	return &core.Record{
		Time:     time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC),
		Level:    core.WarningLevel,
		Category: "db",
		Message:  "slow query",
	}
}

func TestTemplateFormat(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		tmpl string
		want string
	}{
		"all tokens": {
			tmpl: `[\d] \s \c - \m`,
			want: "[2024-05-17 09:30:00] warning db - slow query",
		},
		"literal only": {
			tmpl: "plain text",
			want: "plain text",
		},
		"escaped backslash": {
			tmpl: `path\\to\\file \m`,
			want: `path\to\file slow query`,
		},
		"doubled backslash before token": {
			tmpl: `\\\m`,
			want: `\slow query`,
		},
		"empty template": {
			tmpl: "",
			want: "",
		},
		"adjacent tokens": {
			tmpl: `\s\c\m`,
			want: "warningdbslow query",
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tpl, err := formatter.NewTemplate(tc.tmpl)
			require.NoError(t, err)
			assert.Equal(t, tc.want, tpl.Format(fixedRecord()))
		})
	}
}

func TestTemplateCompileErrors(t *testing.T) {
	t.Parallel()

	for _, tmpl := range []string{`\x`, `bad \q escape`, `trailing\`} {
		_, err := formatter.NewTemplate(tmpl)
		require.ErrorIs(t, err, formatter.ErrBadTemplate, "template %q", tmpl)
	}
}

func TestTemplateCustomLevels(t *testing.T) {
	t.Parallel()

	levels, err := core.NewLevelSet("low", "medium", "high")
	require.NoError(t, err)

	tpl, err := formatter.NewTemplateLevels(`\s: \m`, levels)
	require.NoError(t, err)

	rec := fixedRecord()
	rec.Level = core.Level(3)
	assert.Equal(t, "high: slow query", tpl.Format(rec))
}

func TestMustTemplate(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { formatter.MustTemplate(formatter.DefaultTemplate) })
	assert.Panics(t, func() { formatter.MustTemplate(`\z`) })
}

func TestTemplateRendersUTC(t *testing.T) {
	t.Parallel()

	tpl := formatter.MustTemplate(`\d`)
	rec := fixedRecord()
	rec.Time = time.Date(2024, 5, 17, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "2024-05-17 07:30:00", tpl.Format(rec))
}
