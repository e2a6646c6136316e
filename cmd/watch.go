package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/locations"
	"github.com/Tiliavir/clocktime/internal/tui"
	"github.com/Tiliavir/clocktime/internal/tzdetect"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live terminal world clock",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	locs := locations.NewManager(dataDir, logger)
	res := tzdetect.Detect(timezoneSource(""), catalog.Countries())

	m := tui.New(tui.Options{
		Location: tzdetect.Describe(res),
		Clocks:   locs.Clocks,
		Theme:    currentTheme(),
		Use24h:   cfg.Clock.Use24h,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		return fmt.Errorf("running terminal clock: %w", err)
	}
	return nil
}
