package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/model"
	"github.com/Tiliavir/clocktime/internal/storage"
)

var themeCmd = &cobra.Command{
	Use:   "theme [id]",
	Short: "Show the available themes or select one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTheme,
}

func runTheme(cmd *cobra.Command, args []string) error {
	store := openTheme()

	if len(args) == 0 {
		current := store.Get()
		for _, t := range catalog.Themes() {
			marker := " "
			if t.ID == current {
				marker = "*"
			}
			fmt.Printf("%s %-8s %s  %s\n", marker, t.ID, t.Name, t.Primary)
		}
		return nil
	}

	t, ok := catalog.FindTheme(args[0])
	if !ok {
		usageError("unknown theme %q", args[0])
	}
	if !store.Set(t.ID) {
		fatal(fmt.Errorf("could not save theme %q", t.ID))
	}
	fmt.Printf("Theme set to %s\n", t.Name)
	return nil
}

func openTheme() *storage.Local[string] {
	return storage.Open(dataDir, storage.KeyTheme, catalog.DefaultThemeID, logger)
}

// currentTheme resolves the stored theme id, falling back to the default.
func currentTheme() model.Theme {
	if t, ok := catalog.FindTheme(openTheme().Get()); ok {
		return t
	}
	t, _ := catalog.FindTheme(catalog.DefaultThemeID)
	return t
}
