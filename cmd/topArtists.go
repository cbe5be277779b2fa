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
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/store"
)

var topArtistsNumber int
var topArtistsCmd = &cobra.Command{
	Use:   "top-artists [window]",
	Short: "Gets the user's top artists from the newest snapshot",
	Long:  `The window is one of 'recent' (last 4 weeks, the default), 'medium' (last 6 months) or 'long' (all time).`,
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireSettings("user")
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := printTopArtists(viper.GetString("database"), viper.GetString("user"), topArtistsNumber, args, os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	topArtistsCmd.Flags().IntVarP(&topArtistsNumber, "number", "n", 10, "number of results to return")
}

func parseWindowFromArgs(args []string) (insight.Window, error) {
	if len(args) == 0 {
		return insight.Recent, nil
	}
	w, ok := insight.ParseWindow(strings.ToLower(args[0]))
	if !ok {
		return 0, fmt.Errorf("invalid window %q: expected recent, medium or long", args[0])
	}
	return w, nil
}

func printTopArtists(dbPath string, user string, numToReturn int, args []string, out io.Writer) error {
	w, err := parseWindowFromArgs(args)
	if err != nil {
		return err
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("printTopArtists: %w", err)
	}
	defer db.Close()

	snap, err := db.LatestSnapshot(strings.ToLower(user))
	if err != nil {
		return fmt.Errorf("%w. Run 'update' first", err)
	}

	fmt.Fprintln(out, topArtistsAnalysis(snap, w, numToReturn))
	return nil
}

// topArtistsAnalysis lists the first n artists of a window in rank order,
// all of them if n is 0.
func topArtistsAnalysis(snap store.Snapshot, w insight.Window, n int) Analysis {
	data := snap.Listening.Window(w)
	analysis := Analysis{
		name:    "Top artists",
		results: [][]string{{"Rank", "Artist", "Genres"}},
	}
	for i, a := range data.Artists {
		if n > 0 && i >= n {
			break
		}
		analysis.results = append(analysis.results, []string{strconv.Itoa(i + 1), a.Name, strings.Join(a.Genres, ", ")})
	}

	const dateFormat = "2006-01-02"
	analysis.summary = fmt.Sprintf("Found %d %s artists and %d tracks in the snapshot from %s",
		len(data.Artists), w, len(data.Tracks), snap.FetchedAt.Local().Format(dateFormat))
	return analysis
}
