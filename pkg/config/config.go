// Package config loads goqute settings from HCL or YAML files.
//
//	parser {
//	  max_depth    = 64
//	  block_labels = concat(default_block_labels, ["when"])
//	}
//	files {
//	  include = ["src/main/resources/templates/**/*.html"]
//	  exclude = ["**/build/**"]
//	}
//	log {
//	  level = "debug"
//	  color = true
//	}
package config

import (
	"bytes"
	"context"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/walteh/goqute/pkg/finder"
	"github.com/walteh/goqute/pkg/template"
)

// Config file structure
type Config struct {
	Parser *ParserBlock `json:"parser,omitempty" hcl:"parser,block" yaml:"parser,omitempty"`
	Files  *FilesBlock  `json:"files,omitempty" hcl:"files,block" yaml:"files,omitempty"`
	Log    *LogBlock    `json:"log,omitempty" hcl:"log,block" yaml:"log,omitempty"`
}

type ParserBlock struct {
	MaxDepth    int      `json:"max_depth,omitempty" hcl:"max_depth,optional" yaml:"max_depth,omitempty"`
	BlockLabels []string `json:"block_labels,omitempty" hcl:"block_labels,optional" yaml:"block_labels,omitempty"`
}

type FilesBlock struct {
	Include []string `json:"include,omitempty" hcl:"include,optional" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" hcl:"exclude,optional" yaml:"exclude,omitempty"`
}

type LogBlock struct {
	Level string `json:"level,omitempty" hcl:"level,optional" yaml:"level,omitempty"`
	Color bool   `json:"color,omitempty" hcl:"color,optional" yaml:"color,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := template.DefaultOptions()
	return &Config{
		Parser: &ParserBlock{MaxDepth: opts.MaxDepth, BlockLabels: opts.BlockLabels},
		Files:  &FilesBlock{Include: append([]string{}, finder.DefaultIncludes...)},
		Log:    &LogBlock{Level: "info"},
	}
}

// Load reads a config file, YAML for .yaml/.yml and HCL otherwise, fills unset values
// from Default and validates the result.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg *Config
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		cfg, err = parseYAML(data)
	} else {
		cfg, err = parseHCL(data, path)
	}
	if err != nil {
		return nil, err
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

func parseYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

func parseHCL(data []byte, path string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	labels := make([]cty.Value, 0, len(template.DefaultOptions().BlockLabels))
	for _, l := range template.DefaultOptions().BlockLabels {
		labels = append(labels, cty.StringVal(l))
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_block_labels": cty.ListVal(labels),
		},
		Functions: map[string]function.Function{
			"concat": stdlib.ConcatFunc,
		},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, ctx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}
	return &cfg, nil
}

func (cfg *Config) fillDefaults() {
	def := Default()
	if cfg.Parser == nil {
		cfg.Parser = def.Parser
	}
	if cfg.Parser.MaxDepth == 0 {
		cfg.Parser.MaxDepth = def.Parser.MaxDepth
	}
	if cfg.Parser.BlockLabels == nil {
		cfg.Parser.BlockLabels = def.Parser.BlockLabels
	}
	if cfg.Files == nil {
		cfg.Files = def.Files
	}
	if len(cfg.Files.Include) == 0 {
		cfg.Files.Include = def.Files.Include
	}
	if cfg.Log == nil {
		cfg.Log = def.Log
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// Validate reports every invalid setting at once.
func (cfg *Config) Validate() error {
	var err error

	if cfg.Parser != nil {
		if cfg.Parser.MaxDepth < 0 {
			err = multierr.Append(err, errors.Errorf("parser.max_depth must not be negative, got %d", cfg.Parser.MaxDepth))
		}
		for _, l := range cfg.Parser.BlockLabels {
			if l == "" || strings.ContainsAny(l, " \t\n{}") {
				err = multierr.Append(err, errors.Errorf("parser.block_labels: invalid label %q", l))
			}
		}
	}

	if cfg.Files != nil {
		for _, p := range append(append([]string{}, cfg.Files.Include...), cfg.Files.Exclude...) {
			if !doublestar.ValidatePattern(p) {
				err = multierr.Append(err, errors.Errorf("files: invalid glob pattern %q", p))
			}
		}
	}

	if cfg.Log != nil && cfg.Log.Level != "" {
		if _, perr := zerolog.ParseLevel(cfg.Log.Level); perr != nil {
			err = multierr.Append(err, errors.Errorf("log.level: %w", perr))
		}
	}

	return err
}

// ParserOptions converts the parser block into template options.
func (cfg *Config) ParserOptions() template.Options {
	opts := template.DefaultOptions()
	if cfg.Parser == nil {
		return opts
	}
	if cfg.Parser.MaxDepth > 0 {
		opts.MaxDepth = cfg.Parser.MaxDepth
	}
	if cfg.Parser.BlockLabels != nil {
		opts.BlockLabels = cfg.Parser.BlockLabels
	}
	return opts
}

type contextKey struct{}

// WithContext attaches cfg to ctx.
func (cfg *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// Ctx returns the config attached to ctx, or Default.
func Ctx(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok && cfg != nil {
		return cfg
	}
	return Default()
}
