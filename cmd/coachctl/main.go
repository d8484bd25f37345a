// Package main provides coachctl, an offline runner of the scoring engine
// over exported presentation files.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/noah-isme/oratoria-api/internal/models"
	"github.com/noah-isme/oratoria-api/pkg/emotion"
)

const (
	defaultScheme   = "five"
	defaultTimezone = "America/Lima"
)

type rootOptions struct {
	bandsFile string
	scheme    string
	timezone  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "coachctl",
		Short:        "Score presentations and histories offline",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.bandsFile, "bands", "", "TOML band table (overrides --scheme)")
	rootCmd.PersistentFlags().StringVar(&opts.scheme, "scheme", defaultScheme, "built-in band scheme: five or six")
	rootCmd.PersistentFlags().StringVar(&opts.timezone, "tz", defaultTimezone, "IANA timezone used for dates")

	rootCmd.AddCommand(newScoreCmd(opts))
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newHistoryCmd(opts))

	return rootCmd
}

func (o *rootOptions) bands() (emotion.Bands, error) {
	if o.bandsFile != "" {
		return emotion.LoadBands(o.bandsFile)
	}
	return emotion.BandsByName(o.scheme)
}

func (o *rootOptions) location() (*time.Location, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", o.timezone, err)
	}
	return loc, nil
}

// openInput returns stdin for "-" and the named file otherwise.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// readDetails decodes either one presentation object or an array of them.
func readDetails(r io.Reader) ([]models.PresentationDetail, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	var many []models.PresentationDetail
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}
	var one models.PresentationDetail
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("failed to decode presentations: %w", err)
	}
	return []models.PresentationDetail{one}, nil
}
