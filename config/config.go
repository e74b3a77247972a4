// Package config loads declarative dispatch configuration from YAML and
// builds dispatchers from it. Adapters and formatters are code, not
// configuration, so documents refer to them by name and the caller supplies
// the name-to-instance mapping through a Resolver.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/logfan/logfan/core"
	"github.com/logfan/logfan/dispatch"
	"github.com/logfan/logfan/filter"
	"github.com/logfan/logfan/formatter"
)

// Document is the root of a YAML configuration file.
type Document struct {
	// Levels replaces the default severity set, least to most severe.
	Levels []string `yaml:"levels,omitempty"`
	// StrictUnhandled makes unmatched records an error.
	StrictUnhandled bool `yaml:"strict_unhandled,omitempty"`
	// DrainGrace bounds queue draining on close, e.g. "5s".
	DrainGrace string `yaml:"drain_grace,omitempty"`
	// Pipelines maps pipeline names to their bindings in delivery order.
	Pipelines map[string][]BindingDecl `yaml:"pipelines"`
}

// BindingDecl declares one binding within a pipeline.
type BindingDecl struct {
	// Adapter names an adapter from the Resolver. Required.
	Adapter string `yaml:"adapter"`
	// Conditions restrict which records the binding receives.
	Conditions []filter.ConditionDecl `yaml:"conditions,omitempty"`
	// Format is an inline output template. Mutually exclusive with
	// Formatter.
	Format string `yaml:"format,omitempty"`
	// Formatter names a formatter from the Resolver, or the built-in
	// "json" or "default".
	Formatter string `yaml:"formatter,omitempty"`
	// Async moves delivery onto a worker with a bounded queue.
	Async bool `yaml:"async,omitempty"`
	// QueueSize bounds the async queue.
	QueueSize int `yaml:"queue_size,omitempty"`
	// Dedup enables duplicate suppression.
	Dedup *DedupDecl `yaml:"dedup,omitempty"`
}

// DedupDecl declares the duplicate-suppression window, e.g. "30s".
type DedupDecl struct {
	Window        string `yaml:"window"`
	SweepInterval string `yaml:"sweep_interval,omitempty"`
}

// Resolver maps the names a Document uses to live instances.
type Resolver struct {
	Adapters   map[string]dispatch.Adapter
	Formatters map[string]formatter.Formatter
}

// Parse decodes a YAML document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", dispatch.ErrConfiguration, err)
	}
	return &doc, nil
}

// Load reads and decodes a YAML document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dispatch.ErrConfiguration, err)
	}
	return Parse(data)
}

// Build constructs a dispatcher from doc. Every declaration is validated
// before anything is registered, so a malformed document never yields a
// partially configured dispatcher.
func Build(doc *Document, res Resolver) (*dispatch.Dispatcher, error) {
	levels, err := doc.levelSet()
	if err != nil {
		return nil, err
	}

	grace, err := parseDuration(doc.DrainGrace, "drain_grace")
	if err != nil {
		return nil, err
	}

	d := dispatch.New(dispatch.Config{
		Levels:          levels,
		StrictUnhandled: doc.StrictUnhandled,
		DrainGrace:      grace,
	})
	if err := Apply(d, doc, res); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Apply registers doc's bindings onto an existing dispatcher, validating
// all of them first. On error the dispatcher is left unchanged.
func Apply(d *dispatch.Dispatcher, doc *Document, res Resolver) error {
	type prepared struct {
		adapter dispatch.Adapter
		cfg     dispatch.BindingConfig
	}

	var ready []prepared
	for name, decls := range doc.Pipelines {
		for i, decl := range decls {
			adapter, cfg, err := compileBinding(name, decl, d.Levels(), res)
			if err != nil {
				return fmt.Errorf("pipeline %q, binding %d: %w", name, i, err)
			}
			ready = append(ready, prepared{adapter: adapter, cfg: cfg})
		}
	}

	for _, p := range ready {
		if _, err := d.Add(p.adapter, p.cfg); err != nil {
			return err
		}
	}
	return nil
}

func compileBinding(pipeline string, decl BindingDecl, levels *core.LevelSet, res Resolver) (dispatch.Adapter, dispatch.BindingConfig, error) {
	var cfg dispatch.BindingConfig

	adapter, ok := res.Adapters[decl.Adapter]
	if !ok || adapter == nil {
		return nil, cfg, fmt.Errorf("%w: unknown adapter %q", dispatch.ErrConfiguration, decl.Adapter)
	}

	spec, err := filter.Compile(decl.Conditions, levels)
	if err != nil {
		return nil, cfg, fmt.Errorf("%w: %w", dispatch.ErrConfiguration, err)
	}

	fmtr, err := resolveFormatter(decl, levels, res)
	if err != nil {
		return nil, cfg, err
	}

	if decl.QueueSize < 0 {
		return nil, cfg, fmt.Errorf("%w: negative queue_size", dispatch.ErrConfiguration)
	}

	cfg = dispatch.BindingConfig{
		Pipeline:  pipeline,
		Filter:    spec,
		Formatter: fmtr,
		Async:     decl.Async,
		QueueSize: decl.QueueSize,
	}

	if decl.Dedup != nil {
		window, err := parseDuration(decl.Dedup.Window, "dedup window")
		if err != nil {
			return nil, cfg, err
		}
		if window <= 0 {
			return nil, cfg, fmt.Errorf("%w: dedup window must be positive", dispatch.ErrConfiguration)
		}
		sweep, err := parseDuration(decl.Dedup.SweepInterval, "dedup sweep_interval")
		if err != nil {
			return nil, cfg, err
		}
		cfg.Dedup = &dispatch.DedupConfig{Window: window, SweepInterval: sweep}
	}

	return adapter, cfg, nil
}

func resolveFormatter(decl BindingDecl, levels *core.LevelSet, res Resolver) (formatter.Formatter, error) {
	if decl.Format != "" && decl.Formatter != "" {
		return nil, fmt.Errorf("%w: format and formatter are mutually exclusive", dispatch.ErrConfiguration)
	}

	if decl.Format != "" {
		tpl, err := formatter.NewTemplateLevels(decl.Format, levels)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", dispatch.ErrConfiguration, err)
		}
		return tpl, nil
	}

	if decl.Formatter == "" {
		return nil, nil // dispatcher default
	}
	if f, ok := res.Formatters[decl.Formatter]; ok {
		return f, nil
	}
	switch decl.Formatter {
	case "json":
		return formatter.NewJSONLevels(levels), nil
	case "default":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: unknown formatter %q", dispatch.ErrConfiguration, decl.Formatter)
}

func (doc *Document) levelSet() (*core.LevelSet, error) {
	if len(doc.Levels) == 0 {
		return core.DefaultLevels(), nil
	}
	levels, err := core.NewLevelSet(doc.Levels...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dispatch.ErrConfiguration, err)
	}
	return levels, nil
}

func parseDuration(s, what string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s: %w", dispatch.ErrConfiguration, what, err)
	}
	return d, nil
}
