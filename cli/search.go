package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meghashyamc/storefinder/controller"
	"github.com/meghashyamc/storefinder/models"
	"github.com/meghashyamc/storefinder/validation"
)

var (
	searchLocation  string
	searchType      string
	searchMinRating string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for stores near a location",
	Long: `Geocodes the location, finds stores of the given type within 3 km and
keeps those rated at least --min-rating. Completed searches are saved to history.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "address or place to search around")
	searchCmd.Flags().StringVarP(&searchType, "type", "t", controller.DefaultType, "store category: restaurants, services, cafes, retail, entertainment or all")
	searchCmd.Flags().StringVarP(&searchMinRating, "min-rating", "r", fmt.Sprint(controller.DefaultMinRating), "minimum rating between 0 and 5")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if storeService == nil || historyStore == nil {
		return errors.New("store search not configured")
	}

	if strings.TrimSpace(searchLocation) == "" {
		return errors.New("--location is required")
	}
	if strings.TrimSpace(searchType) == "" {
		return errors.New("--type is required")
	}
	minRating, err := validation.ParseRating(searchMinRating)
	if err != nil {
		return fmt.Errorf("invalid --min-rating: %w", err)
	}

	ctx := commandContext(cmd)

	searchController := controller.New(log, storeService, historyStore)
	searchController.Submit(ctx, models.StoreSearchQuery{Location: searchLocation, Type: searchType, MinRating: minRating})
	searchController.Wait()

	response := searchController.Displayed()
	if response == nil {
		return errors.New("search failed, the store finder server could not be reached or rejected the query")
	}

	if searchJSON {
		return outputSearchJSON(cmd, response)
	}
	return outputSearchTable(cmd, response)
}

func outputSearchJSON(cmd *cobra.Command, response *models.StoreSearchResponse) error {
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, response *models.StoreSearchResponse) error {
	if response.Geocoded == nil {
		cmd.Printf("No location found for %q.\n", response.Query.Location)
		return nil
	}

	cmd.Printf("Near %s (%.4f, %.4f):\n", response.Geocoded.DisplayName, response.Geocoded.Lat, response.Geocoded.Lng)
	if len(response.Stores) == 0 {
		cmd.Println("No stores found.")
		return nil
	}

	cmd.Println()
	for i, store := range response.Stores {
		cmd.Printf("  [%d] %s (%.1f)\n", i+1, store.Name, store.Rating)
		if store.Address != "" {
			cmd.Printf("      %s\n", store.Address)
		}
	}
	return nil
}
