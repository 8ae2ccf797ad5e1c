// Command salawatctl reads and submits salawat from the terminal and can
// follow the campaign totals live.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/client"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/i18n"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/infra"
)

var (
	apiURL  string
	lang    string
	verbose bool
	timeout time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "salawatctl",
	Short:         "Salawat campaign client",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch lang {
		case "ar", "en":
			return nil
		default:
			return fmt.Errorf("unsupported --lang %q (want ar or en)", lang)
		}
	},
}

func init() {
	_ = godotenv.Load()

	defaultURL := os.Getenv("SALAWAT_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "API base URL (or set SALAWAT_API_URL)")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "ar", "Message language: ar or en")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(watchCmd)
}

// newLogger logs to stderr: console output with --verbose, warnings only otherwise.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	if verbose {
		return infra.NewLoggerTo(cmd.ErrOrStderr(), "development")
	}
	return infra.NewLoggerTo(cmd.ErrOrStderr(), "production").Level(zerolog.WarnLevel)
}

func newClient() *client.Client {
	return client.New(apiURL, client.WithLocale(lang), client.WithTimeout(timeout))
}

func formatStats(view client.View) string {
	return fmt.Sprintf("%s: %s | %s: %s",
		i18n.Message(lang, i18n.KeyTotalLabel), i18n.FormatCount(view.Stats.TotalCount),
		i18n.Message(lang, i18n.KeyContributionsLabel), i18n.FormatCount(view.Stats.ContributionCount))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
