package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/locations"
)

var (
	locationsNickname string
	locationsAll      bool
)

var locationsCmd = &cobra.Command{
	Use:     "locations",
	Aliases: []string{"loc"},
	Short:   "Manage the locations shown by clock, watch and the web app",
}

var locationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved locations",
	Args:  cobra.NoArgs,
	RunE:  runLocationsList,
}

var locationsAddCmd = &cobra.Command{
	Use:   "add <code>",
	Short: "Save a location by country code",
	Args:  cobra.ExactArgs(1),
	RunE:  runLocationsAdd,
}

var locationsRemoveCmd = &cobra.Command{
	Use:   "remove <code>",
	Short: "Remove a saved location",
	Args:  cobra.ExactArgs(1),
	RunE:  runLocationsRemove,
}

func init() {
	locationsListCmd.Flags().BoolVar(&locationsAll, "all", false, "List every available country instead")
	locationsAddCmd.Flags().StringVar(&locationsNickname, "nickname", "", "Name to show instead of the country")

	locationsCmd.AddCommand(locationsListCmd)
	locationsCmd.AddCommand(locationsAddCmd)
	locationsCmd.AddCommand(locationsRemoveCmd)
}

func runLocationsList(cmd *cobra.Command, args []string) error {
	if locationsAll {
		for _, c := range catalog.Countries() {
			fmt.Printf("%s  %s %s (%s)\n", c.Code, c.Flag, c.Name, c.Timezone)
		}
		return nil
	}

	saved := locations.NewManager(dataDir, logger).List()
	if len(saved) == 0 {
		fmt.Println("No saved locations. Add one with \"clocktime locations add <code>\".")
		return nil
	}
	for _, s := range saved {
		fmt.Printf("%s  %s %s (%s)\n", s.Country.Code, s.Country.Flag, s.DisplayName(), s.Country.Timezone)
	}
	return nil
}

func runLocationsAdd(cmd *cobra.Command, args []string) error {
	s, err := locations.NewManager(dataDir, logger).Add(args[0], locationsNickname)
	if err != nil {
		usageError("%v", err)
	}
	fmt.Printf("Saved %s %s\n", s.Country.Flag, s.DisplayName())
	return nil
}

func runLocationsRemove(cmd *cobra.Command, args []string) error {
	if err := locations.NewManager(dataDir, logger).Remove(args[0]); err != nil {
		usageError("%v", err)
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}
