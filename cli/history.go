package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meghashyamc/storefinder/models"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage search history",
	Long:  `List, delete, or clear saved store searches.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved search",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved search",
	Long:  `Deletes saved searches one by one. Entries that fail to delete are reported and stay in history.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "output history as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	if historyStore == nil {
		return errors.New("history not configured")
	}

	entries := historyStore.List(commandContext(cmd))

	if historyJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(entries) == 0 {
		cmd.Println("No search history.")
		return nil
	}

	for _, entry := range entries {
		cmd.Printf("%s  %s  %s, rating >= %g, %d stores\n", entry.ID, entry.Timestamp, describe(entry), entry.MinRating, len(entry.Stores))
	}
	return nil
}

func describe(entry models.HistoryEntry) string {
	return fmt.Sprintf("%s in %s", entry.Type, entry.Location)
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if historyStore == nil {
		return errors.New("history not configured")
	}

	id := args[0]
	if err := historyStore.DeleteOne(commandContext(cmd), id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}

	cmd.Printf("Deleted %s\n", id)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	if historyStore == nil {
		return errors.New("history not configured")
	}

	ctx := commandContext(cmd)
	entries := historyStore.List(ctx)
	if len(entries) == 0 {
		cmd.Println("No search history.")
		return nil
	}

	tally := historyStore.DeleteAll(ctx, entries)
	cmd.Printf("Deleted %d of %d entries\n", len(tally.Succeeded), len(entries))
	if !tally.Complete() {
		for _, id := range tally.Failed {
			cmd.Printf("  failed: %s\n", id)
		}
		return fmt.Errorf("%d entries could not be deleted", len(tally.Failed))
	}
	return nil
}
