/*
Copyright 2026 Google LLC

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

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/store"
)

// listSnapshotsCmd represents the listSnapshots command
var listSnapshotsCmd = &cobra.Command{
	Use:   "list-snapshots",
	Short: "Lists the stored snapshots, for the user if one is given",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		err := listSnapshots(viper.GetString("database"), viper.GetString("user"), os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listSnapshotsCmd)
}

func listSnapshots(dbPath string, user string, out io.Writer) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	snaps, err := db.ListSnapshots(strings.ToLower(user))
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(out, "No snapshots found.")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"User", "Id", "Source", "Fetched", "Artists", "Tracks"})
	for _, s := range snaps {
		err := table.Append([]string{
			s.User, s.ID, s.Source, s.FetchedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(s.Artists), strconv.Itoa(s.Tracks),
		})
		if err != nil {
			return fmt.Errorf("rendering snapshots: %w", err)
		}
	}
	return table.Render()
}
