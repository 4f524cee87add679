package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/born-ml/aqt/internal/backend/cpu"
	"github.com/born-ml/aqt/internal/parallel"
	"github.com/born-ml/aqt/internal/quant"
	"github.com/born-ml/aqt/internal/serialization"
	"github.com/born-ml/aqt/internal/tensor"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// Metadata keys recorded in quantized checkpoints.
const (
	metaPrecision         = "aqt.precision"
	metaContractDims      = "aqt.contract_dims"
	metaStopScaleGradient = "aqt.stop_scale_gradient"
	metaSourceSHA256      = "aqt.source_sha256"
)

func quantizeCmd() *cli.Command {
	return &cli.Command{
		Name:  "quantize",
		Usage: "Fake-quantize the floating-point tensors of a SafeTensors checkpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "input .safetensors file"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output .safetensors file"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file; explicit flags take precedence"},
			&cli.IntFlag{Name: "precision", Aliases: []string{"p"}, Usage: "bit precision (1-23)"},
			&cli.BoolFlag{Name: "stop-scale-gradient", Usage: "record that scales are treated as constants"},
			&cli.StringFlag{
				Name:    "contract-dims",
				Aliases: []string{"axis"},
				Usage:   `comma-separated axes sharing one scale, e.g. "-1" or "0,1" (default: all)`,
			},
			&cli.StringFlag{Name: "dtype", Usage: "output dtype for quantized tensors (f32, f64, f16, bf16; default: keep)"},
			&cli.StringFlag{Name: "include", Usage: "only quantize tensors whose name matches this regexp"},
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "tensors quantized concurrently", Value: runtime.GOMAXPROCS(0)},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "do not print the summary table"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := resolveOptions(cmd)
			if err != nil {
				return err
			}
			results, err := runQuantize(ctx, opts)
			if err != nil {
				return err
			}
			if !cmd.Bool("quiet") {
				renderReport(stdout(cmd), results)
			}
			return nil
		},
	}
}

// tensorResult describes what happened to one tensor.
type tensorResult struct {
	Name     string
	DType    tensor.DataType
	Shape    []int
	Quantize bool
	MaxError float64 // Largest |fake_quant(x) - x|
}

// runQuantize reads opts.In, fake-quantizes the selected tensors and writes opts.Out.
func runQuantize(ctx context.Context, opts quantizeOptions) ([]tensorResult, error) {
	log := loggerFrom(ctx)
	start := time.Now()

	cfg, err := opts.Params.Config()
	if err != nil {
		return nil, err
	}

	var include *regexp.Regexp
	if opts.Include != "" {
		if include, err = regexp.Compile(opts.Include); err != nil {
			return nil, fmt.Errorf("invalid --include: %w", err)
		}
	}

	var outDType *tensor.DataType
	if opts.DType != "" {
		dt, ok := tensor.ParseDataType(opts.DType)
		if !ok || !dt.IsFloat() {
			return nil, fmt.Errorf("invalid --dtype %q: want f32, f64, f16 or bf16", opts.DType)
		}
		outDType = &dt
	}

	r, err := serialization.Open(opts.In)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	metas := r.Tensors()
	entries := make([]serialization.Tensor, len(metas))
	results := make([]tensorResult, len(metas))
	backend := cpu.New()

	log.Info("quantizing checkpoint",
		"in", opts.In, "tensors", len(metas), "config", cfg.String(),
		"contract_dims", formatDims(opts.ContractDims), "jobs", opts.Jobs)

	err = parallel.Run(ctx, len(metas), opts.Jobs, func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		meta := metas[i]
		entry, err := r.Tensor(meta.Name)
		if err != nil {
			return err
		}
		results[i] = tensorResult{Name: meta.Name, DType: meta.DType, Shape: meta.Shape}

		if !selected(meta, include) {
			log.Debug("passing through", "tensor", meta.Name, "dtype", meta.DType)
			entries[i] = entry
			return nil
		}

		dtype := meta.DType
		if outDType != nil {
			dtype = *outDType
		}

		x, err := entry.Raw(tensor.CPU)
		if err != nil {
			return err
		}
		q := quant.New(meta.Name, cfg, backend)
		fq, err := q.FakeQuant(x, tensorDims(opts.ContractDims, len(meta.Shape)), dtype)
		if err != nil {
			return err
		}

		entries[i] = serialization.FromRaw(meta.Name, fq)
		results[i].Quantize = true
		results[i].DType = dtype
		results[i].MaxError = maxAbsDiff(x.Float64s(), fq.Float64s())
		log.Debug("quantized", "tensor", meta.Name, "shape", meta.Shape, "max_error", results[i].MaxError)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sum, err := r.DataChecksum()
	if err != nil {
		return nil, err
	}
	metadata := make(map[string]string, len(r.Metadata())+4)
	for k, v := range r.Metadata() {
		metadata[k] = v
	}
	precision, _ := cfg.Precision()
	metadata[metaPrecision] = strconv.Itoa(precision)
	metadata[metaContractDims] = formatDims(opts.ContractDims)
	metadata[metaStopScaleGradient] = strconv.FormatBool(cfg.StopScaleGradient())
	metadata[metaSourceSHA256] = fmt.Sprintf("%x", sum)

	// Pass-through entries alias the input mapping, so write before closing it.
	if err := serialization.WriteFile(opts.Out, entries, metadata); err != nil {
		return nil, err
	}

	quantized := 0
	for _, res := range results {
		if res.Quantize {
			quantized++
		}
	}
	log.Info("wrote checkpoint", "out", opts.Out, "quantized", quantized,
		"passed_through", len(results)-quantized, "elapsed", time.Since(start))
	return results, nil
}

// selected reports whether a tensor is quantized: floating-point, non-empty
// and matching the include filter.
func selected(meta serialization.TensorMeta, include *regexp.Regexp) bool {
	if !meta.DType.IsFloat() || meta.NumElements() == 0 {
		return false
	}
	return include == nil || include.MatchString(meta.Name)
}

func maxAbsDiff(a, b []float64) float64 {
	var m float64
	for i := range a {
		m = max(m, math.Abs(a[i]-b[i]))
	}
	return m
}

func renderReport(w io.Writer, results []tensorResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"TENSOR", "DTYPE", "SHAPE", "ACTION", "MAX ERROR"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, res := range results {
		action, maxErr := "kept", "-"
		if res.Quantize {
			action, maxErr = "quantized", formatFloat(res.MaxError)
		}
		table.Append([]string{res.Name, res.DType.String(), fmt.Sprint(res.Shape), action, maxErr})
	}
	table.Render()
}
