package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clocktime/internal/locations"
	"github.com/Tiliavir/clocktime/internal/model"
	"github.com/Tiliavir/clocktime/internal/timecalc"
)

var clock24h bool

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Print the current time at every saved location",
	Long: `Print the current time at every saved location. Without saved locations
every country of the built-in table is shown.`,
	Args: cobra.NoArgs,
	RunE: runClock,
}

func init() {
	clockCmd.Flags().BoolVar(&clock24h, "24h", false, "Use a 24-hour clock (default from clock.use_24h)")
}

func runClock(cmd *cobra.Command, args []string) error {
	use24h := cfg.Clock.Use24h
	if cmd.Flags().Changed("24h") {
		use24h = clock24h
	}
	printClocks(locations.NewManager(dataDir, logger).Clocks(), time.Now(), use24h)
	return nil
}

func printClocks(clocks []model.SavedCountry, now time.Time, use24h bool) {
	if len(clocks) == 0 {
		fmt.Println("No locations.")
		return
	}
	width := 0
	for _, sc := range clocks {
		if n := len([]rune(sc.DisplayName())); n > width {
			width = n
		}
	}
	for _, sc := range clocks {
		tz := sc.Country.Timezone
		fmt.Printf("%s %-*s  %s  %s  %s\n",
			sc.Country.Flag,
			width, sc.DisplayName(),
			timecalc.FormatClock(now, tz, use24h),
			timecalc.OffsetLabel(now, tz),
			timecalc.FormatDate(now, tz),
		)
	}
}
