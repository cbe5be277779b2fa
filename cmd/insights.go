package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/source"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/store"
)

type InsightsConfig struct {
	DbPath string
	User   string
	Input  string
	Live   bool
	Format string
	Source SourceConfig
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Analyzes the user's listening and prints an insight report",
	Long: `By default analyzes the newest snapshot stored by update. With --live the data
is fetched first without being stored; with --input it is read from a YAML or
JSON file with recent, medium and long keys.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(viper.GetString("format")); err != nil {
			return err
		}
		switch {
		case viper.GetString("input") != "":
			return nil
		case viper.GetBool("live"):
			return requireSettings(sourceSettings()...)
		}
		return requireSettings("user")
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := InsightsConfig{
			DbPath: viper.GetString("database"),
			User:   viper.GetString("user"),
			Input:  viper.GetString("input"),
			Live:   viper.GetBool("live"),
			Format: viper.GetString("format"),
			Source: sourceConfig(),
		}

		logger := newLogger(viper.GetBool("verbose"))
		defer logger.Sync()

		err := printInsights(cmd.Context(), config, os.Stdout, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating insights: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)

	var format, input string
	var live bool
	insightsCmd.Flags().StringVar(&format, "format", "table", "Output format: table, yaml or json")
	viper.BindPFlag("format", insightsCmd.Flags().Lookup("format"))

	insightsCmd.Flags().StringVarP(&input, "input", "i", "", "Read listening data from this YAML or JSON file")
	viper.BindPFlag("input", insightsCmd.Flags().Lookup("input"))

	insightsCmd.Flags().BoolVar(&live, "live", false, "Fetch listening data now instead of using the stored snapshot")
	viper.BindPFlag("live", insightsCmd.Flags().Lookup("live"))
}

func validateFormat(format string) error {
	switch format {
	case "table", "yaml", "json":
		return nil
	}
	return fmt.Errorf("invalid --format %q: expected table, yaml or json", format)
}

func printInsights(ctx context.Context, config InsightsConfig, out io.Writer, logger *zap.Logger) error {
	listening, err := loadListening(ctx, config, logger)
	if err != nil {
		return err
	}

	report, err := insight.Analyze(listening)
	if err != nil {
		return err
	}
	return writeReport(out, report, config.Format)
}

func loadListening(ctx context.Context, config InsightsConfig, logger *zap.Logger) (insight.Listening, error) {
	if config.Input != "" {
		return readListeningFile(config.Input)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		return insight.Listening{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	user := strings.ToLower(config.User)
	if !config.Live {
		snap, err := db.LatestSnapshot(user)
		if err != nil {
			return insight.Listening{}, fmt.Errorf("%w. Run 'update' first", err)
		}
		logger.Debug("using snapshot", zap.String("id", snap.ID), zap.Time("fetched_at", snap.FetchedAt))
		return snap.Listening, nil
	}

	p, err := newProvider(ctx, config.Source, db, logger)
	if err != nil {
		return insight.Listening{}, err
	}
	listening, err := source.Fetch(ctx, p, logger)
	if err != nil {
		return insight.Listening{}, err
	}
	return listening, p.finish()
}

// readListeningFile decodes a listening file. JSON is accepted since it is a
// subset of YAML.
func readListeningFile(path string) (insight.Listening, error) {
	f, err := os.Open(path)
	if err != nil {
		return insight.Listening{}, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	var l insight.Listening
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil && err != io.EOF {
		return insight.Listening{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return l, nil
}

func writeReport(out io.Writer, report *insight.Report, format string) error {
	switch format {
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return encoder.Close()
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return nil
	}

	fmt.Fprintf(out, "Listening insights (%d tracks analyzed, %s)\n\n",
		report.TotalTracksAnalyzed, report.AnalysisDate.Format("2006-01-02 15:04"))
	for _, a := range reportAnalyses(report) {
		fmt.Fprintf(out, "%s:\n%s\n", a.GetName(), a)
	}
	return nil
}
