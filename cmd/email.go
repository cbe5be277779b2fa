/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/store"
)

type SendEmailConfig struct {
	DbPath         string
	User           string
	From           string
	To             string
	DryRun         bool
	SendgridAPIKey string
}

var emailCmd = &cobra.Command{
	Use:   "email <address>",
	Short: "Emails an insight report",
	Long:  `Analyzes the newest stored snapshot and emails the report as HTML tables.`,
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("dryRun") {
			return requireSettings("user")
		}
		return requireSettings("user", "from", "sendgrid_api_key")
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := SendEmailConfig{
			DbPath:         viper.GetString("database"),
			User:           viper.GetString("user"),
			From:           viper.GetString("from"),
			To:             args[0],
			DryRun:         viper.GetBool("dryRun"),
			SendgridAPIKey: viper.GetString("sendgrid_api_key"),
		}
		err := sendEmail(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))
}

func sendEmail(config SendEmailConfig) error {
	user := strings.ToLower(config.User)

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	snap, err := db.LatestSnapshot(user)
	if err != nil {
		return fmt.Errorf("%w. Run 'update' first", err)
	}

	report, err := insight.Analyze(snap.Listening)
	if err != nil {
		return err
	}

	subject, out := generateEmailContent(user, report)

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, out)
		return nil
	}

	from := mail.NewEmail("spotify-insights", config.From)
	to := mail.NewEmail(config.To, config.To)
	plain := fmt.Sprintf("Listening insights for %s: diversity %d/100, loyalty %d/100, exploration %d/100.",
		user, report.GenreDiversityScore, report.ArtistLoyaltyScore, report.ExplorationScore)
	message := mail.NewSingleEmail(from, subject, to, plain, out)

	client := sendgrid.NewSendClient(config.SendgridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: status %d: %s", resp.StatusCode, resp.Body)
	}
	fmt.Printf("Sent insights for %q to %s\n", user, config.To)
	return nil
}

func generateEmailContent(user string, report *insight.Report) (subject string, body string) {
	var out strings.Builder
	out.WriteString(`
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`)
	for _, analysis := range reportAnalyses(report) {
		out.WriteString("<div>\n")
		fmt.Fprintf(&out, "<h2>%s</h2>\n", html.EscapeString(analysis.GetName()))

		if len(analysis.results) <= 1 {
			out.WriteString("<div>No data.</div>\n")
		} else {
			out.WriteString("<table>\n<thead>\n<tr>")
			for _, header := range analysis.results[0] {
				fmt.Fprintf(&out, "<th>%s</th>", html.EscapeString(header))
			}
			out.WriteString("</tr>\n</thead>\n<tbody>\n")
			for _, row := range analysis.results[1:] {
				out.WriteString("<tr>\n")
				for _, column := range row {
					fmt.Fprintf(&out, "<td>%s</td>\n", html.EscapeString(column))
				}
				out.WriteString("</tr>\n")
			}
			out.WriteString("</tbody>\n</table>\n")
		}
		fmt.Fprintf(&out, "<div>%s</div>\n</div>\n", html.EscapeString(analysis.summary))
	}
	out.WriteString("  </body>\n</html>\n")

	subject = fmt.Sprintf("Listening insights for %s, %s", user, report.AnalysisDate.Format("2006-01-02"))
	return subject, out.String()
}
