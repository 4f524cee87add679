package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/aqt/internal/quant"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML configuration accepted by "aqt quantize --config".
// Pointer fields distinguish "not set" from zero values.
type fileConfig struct {
	quant.Params `yaml:",inline"`

	ContractDims []int  `yaml:"contract_dims"`
	DType        string `yaml:"dtype"`
	Include      string `yaml:"include"`
	Jobs         *int   `yaml:"jobs"`
}

// quantizeOptions are the resolved settings of one quantize run.
type quantizeOptions struct {
	In           string
	Out          string
	Params       quant.Params
	ContractDims []int
	DType        string
	Include      string
	Jobs         int
}

func loadConfig(path string) (fileConfig, error) {
	//nolint:gosec // G304: config path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveOptions merges the config file (if any) under the explicitly set flags.
func resolveOptions(cmd *cli.Command) (quantizeOptions, error) {
	opts := quantizeOptions{
		In:      cmd.String("in"),
		Out:     cmd.String("out"),
		DType:   cmd.String("dtype"),
		Include: cmd.String("include"),
		Jobs:    cmd.Int("jobs"),
	}

	if path := cmd.String("config"); path != "" {
		cfg, err := loadConfig(path)
		if err != nil {
			return quantizeOptions{}, err
		}
		opts.Params = cfg.Params
		opts.ContractDims = cfg.ContractDims
		if cfg.DType != "" && !cmd.IsSet("dtype") {
			opts.DType = cfg.DType
		}
		if cfg.Include != "" && !cmd.IsSet("include") {
			opts.Include = cfg.Include
		}
		if cfg.Jobs != nil && !cmd.IsSet("jobs") {
			opts.Jobs = *cfg.Jobs
		}
	}

	if cmd.IsSet("precision") {
		opts.Params.Precision = quant.Bits(cmd.Int("precision"))
	}
	if cmd.IsSet("stop-scale-gradient") {
		opts.Params.StopScaleGradient = cmd.Bool("stop-scale-gradient")
	}
	if cmd.IsSet("contract-dims") {
		dims, err := parseDims(cmd.String("contract-dims"))
		if err != nil {
			return quantizeOptions{}, err
		}
		opts.ContractDims = dims
	}

	switch {
	case opts.In == "":
		return quantizeOptions{}, fmt.Errorf("quantize: --in is required")
	case opts.Out == "":
		return quantizeOptions{}, fmt.Errorf("quantize: --out is required")
	case opts.Params.Precision == nil:
		return quantizeOptions{}, fmt.Errorf("quantize: precision must be set by --precision or the config file")
	case opts.Jobs < 1:
		return quantizeOptions{}, fmt.Errorf("quantize: --jobs must be positive, got %d", opts.Jobs)
	}
	return opts, nil
}

// parseDims parses a comma-separated axis list such as "-1" or "0,2".
// "all" and the empty string return nil, which tensorDims expands to every
// axis of each tensor.
func parseDims(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	dims := make([]int, 0, len(parts))
	for _, part := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid contract dim %q: %w", part, err)
		}
		dims = append(dims, d)
	}
	return dims, nil
}

// tensorDims returns the contract dims applied to a tensor of rank ndim.
// nil selects every axis, giving one scale per tensor.
func tensorDims(dims []int, ndim int) []int {
	if len(dims) > 0 {
		return dims
	}
	all := make([]int, ndim)
	for i := range all {
		all[i] = i
	}
	return all
}

func formatDims(dims []int) string {
	if len(dims) == 0 {
		return "all"
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}
