package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/oratoria-api/pkg/language"
)

func newAnalyzeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze <file|->",
		Short: "Count words, cues and fillers in a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close() //nolint:errcheck

			text, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read transcript: %w", err)
			}
			metrics := language.Analyze(string(text))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(metrics)
			}
			return printMetrics(out, metrics)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print metrics as JSON")
	return cmd
}

func printMetrics(out io.Writer, m language.Metrics) error {
	rows := [][]string{
		{"Palabras", fmt.Sprint(m.TotalWords), ""},
		{"Positivas", fmt.Sprint(m.PositiveWords), strings.Join(m.GoodExamples, " | ")},
		{"Negativas", fmt.Sprint(m.NegativeWords), strings.Join(m.BadExamples, " | ")},
		{"Muletillas", fmt.Sprint(m.FillerCount), strings.Join(m.FillerExamples, " | ")},
	}
	if err := writeTable(out, []string{"Métrica", "Total", "Ejemplos"}, rows); err != nil {
		return err
	}
	for _, tip := range m.Tips {
		fmt.Fprintf(out, "- %s\n", tip)
	}
	return nil
}
