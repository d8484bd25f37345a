package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/oratoria-api/pkg/emotion"
	"github.com/noah-isme/oratoria-api/pkg/history"
)

type historyOptions struct {
	period string
	start  string
	end    string
	asOf   string
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history <file|->",
		Short: "Summarise a presentation history over a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, root, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.period, "period", "", "7d, 30d, 6m, 1y or custom (default: whole history)")
	cmd.Flags().StringVar(&opts.start, "start", "", "custom period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "end", "", "custom period end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "reference date for presets (YYYY-MM-DD, default today)")
	return cmd
}

func runHistory(cmd *cobra.Command, root *rootOptions, opts *historyOptions, path string) error {
	bands, err := root.bands()
	if err != nil {
		return err
	}
	loc, err := root.location()
	if err != nil {
		return err
	}

	in, err := openInput(cmd, path)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	details, err := readDetails(in)
	if err != nil {
		return err
	}
	records := make([]history.Record, 0, len(details))
	for i := range details {
		records = append(records, details[i].Presentation.Record(&details[i]))
	}

	label := "Todo el historial"
	if opts.period != "" {
		window, err := opts.window(loc)
		if err != nil {
			return err
		}
		label = fmt.Sprintf("%s a %s", window.Start.Format(history.DateLayout), window.End.Format(history.DateLayout))
		inWindow := make([]history.Record, 0, len(records))
		for _, r := range records {
			if window.Contains(r.CreatedAt) {
				inWindow = append(inWindow, r)
			}
		}
		records = inWindow
	}
	records = history.SortByCreatedAt(records)

	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		raw := emotion.RawScore(r.Input())
		rows = append(rows, []string{
			r.CreatedAt.In(loc).Format(history.DateLayout),
			r.Filename,
			r.Dominant().Label(),
			fmt.Sprintf("%.1f", emotion.DisplayScore(r.Input())),
			bands.ForPercent(emotion.Percentage(raw)).Name,
		})
	}
	if err := writeTable(out, []string{"Fecha", "Archivo", "Emoción", "Puntaje", "Nivel"}, rows); err != nil {
		return err
	}

	raws := history.RawScores(records)
	mean := history.Mean(raws)
	top := history.TopEmotionWithTiebreak(records)
	trend := history.ComputeTrendDeltas(raws)

	fmt.Fprintf(out, "\nPeriodo: %s\n", label)
	fmt.Fprintf(out, "Presentaciones: %d\n", len(records))
	fmt.Fprintf(out, "Puntaje promedio: %.2f (%s)\n", mean, bands.ForPercent(emotion.Percentage(mean)).Name)
	fmt.Fprintf(out, "Emoción más frecuente: %s\n", top.Label)
	if len(raws) > 0 {
		fmt.Fprintf(out, "Tendencia: %+d pts total, %+d pts reciente\n", trend.TotalDeltaPct, trend.RecentDeltaPct)
	}
	return nil
}

func (o *historyOptions) window(loc *time.Location) (history.Window, error) {
	now := time.Now()
	if o.asOf != "" {
		t, err := time.ParseInLocation(history.DateLayout, o.asOf, loc)
		if err != nil {
			return history.Window{}, fmt.Errorf("invalid --as-of: %w", err)
		}
		now = t
	}
	var start, end time.Time
	var err error
	if o.start != "" {
		if start, err = time.ParseInLocation(history.DateLayout, o.start, loc); err != nil {
			return history.Window{}, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if o.end != "" {
		if end, err = time.ParseInLocation(history.DateLayout, o.end, loc); err != nil {
			return history.Window{}, fmt.Errorf("invalid --end: %w", err)
		}
	}
	return history.ResolveWindow(history.Period(o.period), now, start, end, loc)
}
