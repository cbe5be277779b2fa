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
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/source"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/store"
)

type UpdateConfig struct {
	DbPath string
	User   string
	Force  bool
	Keep   int
	Source SourceConfig
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetches top artists and tracks for all three time ranges",
	Long:  `Stores a snapshot of the fetched data in a local SQLite database.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireSettings(sourceSettings()...)
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := UpdateConfig{
			DbPath: viper.GetString("database"),
			User:   viper.GetString("user"),
			Force:  viper.GetBool("force"),
			Keep:   viper.GetInt("keep"),
			Source: sourceConfig(),
		}

		logger := newLogger(viper.GetBool("verbose"))
		defer logger.Sync()

		err := updateDatabase(cmd.Context(), config, logger)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	var force bool
	updateCmd.Flags().BoolVarP(&force, "force", "f", false, "Fetch even if the data was updated in the past 24 hours")
	viper.BindPFlag("force", updateCmd.Flags().Lookup("force"))

	var keep int
	updateCmd.Flags().IntVar(&keep, "keep", 10, "Number of snapshots to keep per user")
	viper.BindPFlag("keep", updateCmd.Flags().Lookup("keep"))
}

func sourceConfig() SourceConfig {
	return SourceConfig{
		Name:                viper.GetString("source"),
		User:                strings.ToLower(viper.GetString("user")),
		SpotifyClientID:     viper.GetString("spotify_client_id"),
		SpotifyClientSecret: viper.GetString("spotify_client_secret"),
		SpotifyRedirectURI:  viper.GetString("spotify_redirect_uri"),
		LastFmApiKey:        viper.GetString("api_key"),
		LastFmSecret:        viper.GetString("secret"),
	}
}

func updateDatabase(ctx context.Context, config UpdateConfig, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	user := strings.ToLower(config.User)

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	err = db.CreateUser(user)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	lastUpdated, err := db.GetLastUpdated(user)
	if err != nil {
		return err
	}
	now := time.Now()
	if !lastUpdated.IsZero() && now.Sub(lastUpdated).Hours() < 24 && !config.Force {
		fmt.Printf("User data was already updated in the past 24 hours\n")
		return nil
	}
	if !lastUpdated.IsZero() {
		fmt.Printf("User data was last updated: %s\n", lastUpdated.Format("2006-01-02"))
	}

	p, err := newProvider(ctx, config.Source, db, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Fetching top artists and tracks for %q from %s\n", user, p.Name())
	if err := saveSnapshot(ctx, db, p, user, now, config.Keep, logger); err != nil {
		return err
	}
	return p.finish()
}

// saveSnapshot fetches every window from p and stores the result as the
// user's newest snapshot, keeping at most keep snapshots.
func saveSnapshot(ctx context.Context, db *store.Store, p source.Provider, user string, now time.Time, keep int, logger *zap.Logger) error {
	listening, err := source.Fetch(ctx, p, logger)
	if err != nil {
		return fmt.Errorf("fetching listening data: %w", err)
	}

	id, err := db.SaveSnapshot(user, p.Name(), listening, now)
	if err != nil {
		return err
	}
	fmt.Printf("Stored snapshot %s: %d/%d/%d artists, %d/%d/%d tracks\n", id,
		len(listening.Recent.Artists), len(listening.Medium.Artists), len(listening.Long.Artists),
		len(listening.Recent.Tracks), len(listening.Medium.Tracks), len(listening.Long.Tracks))

	if err := db.SetLastUpdated(user, now); err != nil {
		return err
	}

	if keep > 0 {
		removed, err := db.PruneSnapshots(user, keep)
		if err != nil {
			return err
		}
		if removed > 0 {
			logger.Debug("pruned snapshots", zap.String("user", user), zap.Int64("removed", removed))
		}
	}
	return nil
}
