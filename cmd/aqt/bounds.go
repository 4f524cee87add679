package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/born-ml/aqt/internal/quant"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

func boundsCmd() *cli.Command {
	return &cli.Command{
		Name:  "bounds",
		Usage: "Print clip bounds for a range of bit precisions",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "min",
				Usage: "smallest precision",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "max",
				Usage: "largest precision",
				Value: quant.MaxPrecision,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			lo, hi := cmd.Int("min"), cmd.Int("max")
			rows, err := boundsRows(lo, hi)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(stdout(cmd))
			table.SetHeader([]string{"PRECISION", "CLIP BOUND", "SAFE BOUND", "MARGIN"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_RIGHT)
			table.SetBorder(false)
			table.AppendBulk(rows)
			table.Render()
			return nil
		},
	}
}

// boundsRows validates each precision in [lo, hi] and formats its bounds.
func boundsRows(lo, hi int) ([][]string, error) {
	if lo > hi {
		return nil, fmt.Errorf("bounds: --min %d exceeds --max %d", lo, hi)
	}

	rows := make([][]string, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		if _, err := quant.NewConfig(quant.Bits(p), false); err != nil {
			return nil, err
		}
		clip := quant.ClipBound(p)
		safe := quant.SafeClipBound(p)
		rows = append(rows, []string{
			strconv.Itoa(p),
			formatFloat(clip),
			formatFloat(safe),
			formatFloat(clip - safe),
		})
	}
	return rows, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
