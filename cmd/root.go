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
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spotify-insights",
	Short: "Derives listening insights from Spotify or last.fm top charts",
	Long: `Fetches a listener's top artists and tracks over the last 4 weeks, 6 months
and all time, caches them in a local SQLite database, and reports on genre
diversity, artist loyalty, exploration and taste drift.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.spotify-insights.yaml)")

	flags.StringP("database", "d", "./insights.db", "Path to the SQLite database")
	flags.StringP("user", "u", "", "Name to store listening data under (the last.fm username for --source=lastfm)")
	flags.String("source", "spotify", "Where to fetch listening data from: spotify or lastfm")

	flags.String("spotify_client_id", "", "Spotify app client ID")
	flags.String("spotify_client_secret", "", "Spotify app client secret")
	flags.String("spotify_redirect_uri", "http://127.0.0.1:8888/callback", "Redirect URI registered for the Spotify app")

	flags.String("api_key", "", "last.fm API key")
	flags.String("secret", "", "last.fm secret")

	flags.String("sendgrid_api_key", "", "SendGrid API key, for sending emails")
	flags.String("from", "", "From email address")

	flags.BoolP("verbose", "v", false, "Log upstream requests")

	for _, name := range []string{
		"database", "user", "source",
		"spotify_client_id", "spotify_client_secret", "spotify_redirect_uri",
		"api_key", "secret", "sendgrid_api_key", "from", "verbose",
	} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".spotify-insights" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".spotify-insights")
	}

	viper.SetEnvPrefix("spotify_insights")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// requireSettings fails the way cobra does for missing required flags, but
// also accepts values that came from the config file.
func requireSettings(names ...string) error {
	var missing []string
	for _, name := range names {
		if viper.GetString(name) == "" {
			missing = append(missing, fmt.Sprintf("%q", name))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flag(s) %s not set", strings.Join(missing, ", "))
	}
	return nil
}

// sourceSettings lists the settings the configured source needs.
func sourceSettings() []string {
	if viper.GetString("source") == "lastfm" {
		return []string{"user", "api_key", "secret"}
	}
	return []string{"user", "spotify_client_id", "spotify_client_secret"}
}

// newLogger builds the logger for upstream traffic. Command output goes to
// stdout; logs go to stderr.
func newLogger(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
