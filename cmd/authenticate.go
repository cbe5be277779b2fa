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
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/source/spotify"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/store"
)

var authenticateCmd = &cobra.Command{
	Use:   "authenticate [email] --user=foo",
	Short: "Authorizes access to the user's Spotify top artists and tracks.",
	Long: `Prints a Spotify authorization URL, or emails it when an address is given.
After approving access, paste the URL Spotify redirected to (or just its code).`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		settings := []string{"user", "spotify_client_id", "spotify_client_secret"}
		if len(args) == 1 {
			settings = append(settings, "from", "sendgrid_api_key")
		}
		return requireSettings(settings...)
	},
	Run: func(cmd *cobra.Command, args []string) {
		to := ""
		if len(args) == 1 {
			to = args[0]
		}
		err := authenticate(cmd.Context(), viper.GetString("database"), viper.GetString("user"), to, os.Stdin)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(authenticateCmd)
}

func authenticate(ctx context.Context, dbPath, user, toAddress string, in io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}
	user = strings.ToLower(user)

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	auth := spotify.AuthConfig(
		viper.GetString("spotify_client_id"),
		viper.GetString("spotify_client_secret"),
		viper.GetString("spotify_redirect_uri"))
	state := uuid.NewString()
	authURL := auth.AuthCodeURL(state, oauth2.AccessTypeOffline)

	if toAddress != "" {
		if err := sendAuthEmail(toAddress, authURL); err != nil {
			return err
		}
		fmt.Printf("Sent authorization link to %s\n", toAddress)
	} else {
		fmt.Printf("Open this URL to authorize access:\n\n%s\n\n", authURL)
	}

	fmt.Print("Paste the redirect URL or code: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading authorization code: %w", err)
	}
	code, err := parseAuthCode(strings.TrimSpace(line), state)
	if err != nil {
		return err
	}

	tok, err := auth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	if err := db.SaveToken(user, tokenFromOAuth(tok)); err != nil {
		return err
	}

	fmt.Printf("Successfully authenticated %q\n", user)
	return nil
}

// parseAuthCode accepts either the full redirect URL, whose state must match,
// or a bare authorization code.
func parseAuthCode(input, state string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("no authorization code given")
	}
	if !strings.Contains(input, "code=") && !strings.Contains(input, "error=") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("parsing redirect URL: %w", err)
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s", e)
	}
	if q.Get("state") != state {
		return "", fmt.Errorf("authorization state mismatch")
	}
	return q.Get("code"), nil
}

func sendAuthEmail(toAddress, authURL string) error {
	from := mail.NewEmail("spotify-insights", viper.GetString("from"))
	subject := "Authorize spotify-insights"
	to := mail.NewEmail(toAddress, toAddress)
	bodyText := "Click here to authorize: " + authURL
	message := mail.NewSingleEmail(from, subject, to, bodyText, bodyText)
	client := sendgrid.NewSendClient(viper.GetString("sendgrid_api_key"))
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sending authorization email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sending authorization email: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
