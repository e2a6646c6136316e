package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/weather"
)

var weatherCmd = &cobra.Command{
	Use:   "weather <code>",
	Short: "Show the (simulated) weather for a country",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeather,
}

func runWeather(cmd *cobra.Command, args []string) error {
	c, ok := catalog.FindCountry(args[0])
	if !ok {
		usageError("unknown country code %q", args[0])
	}

	provider := weather.NewSimulated(uint64(time.Now().UnixNano()), cfg.Server.WeatherDelay)
	w, err := provider.Current(cmd.Context(), c.Code)
	if err != nil {
		fatal(fmt.Errorf("fetching weather for %s: %w", c.Code, err))
	}

	fmt.Printf("%s %s\n", c.Flag, c.Name)
	fmt.Printf("  %s %s, %d°C\n", w.Icon, w.Description, w.Temperature)
	fmt.Printf("  Humidity: %d%%  Wind: %d km/h\n", w.Humidity, w.WindSpeed)
	return nil
}
