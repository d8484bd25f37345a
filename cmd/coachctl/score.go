package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/oratoria-api/pkg/emotion"
)

func newScoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score <file|->",
		Short: "Score one analysed presentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bands, err := opts.bands()
			if err != nil {
				return err
			}
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close() //nolint:errcheck

			details, err := readDetails(in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i := range details {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := printScore(cmd, details[i].ID, details[i].DominantEmotion, details[i].Confidence, details[i].Distribution(), bands); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printScore(cmd *cobra.Command, id, dominant string, confidence float64, dist emotion.Distribution, bands emotion.Bands) error {
	out := cmd.OutOrStdout()
	input := emotion.InputFor(dominant, dist)
	raw := emotion.RawScore(input)
	pct := emotion.Percentage(raw)
	band := bands.ForPercent(pct)

	fmt.Fprintf(out, "Presentación %s\n", id)
	fmt.Fprintf(out, "Emoción dominante: %s (%s)\n", emotion.Normalize(dominant).Label(), emotion.StarsLine(float64(emotion.ConfidenceStars(confidence))))

	if len(dist) > 0 {
		levels := dist.Levels010()
		rows := make([][]string, 0, len(emotion.DisplayOrder))
		for _, k := range emotion.DisplayOrder {
			if _, ok := dist.Prob(k); !ok {
				continue
			}
			rows = append(rows, []string{k.Label(), fmt.Sprintf("%d%%", dist.Percent(k)), fmt.Sprintf("%.1f", levels[k])})
		}
		if err := writeTable(out, []string{"Emoción", "Prob.", "Nivel"}, rows); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Puntaje: %.2f (%.1f%%) %s\n", raw, pct, emotion.BetweenLabel(raw))
	fmt.Fprintf(out, "Estrellas: %s\n", emotion.StarsLine(emotion.DisplayScore(input)))
	fmt.Fprintf(out, "Banda: %s\n", band.Name)
	return nil
}
