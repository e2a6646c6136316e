package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/model"
	"github.com/Tiliavir/clocktime/internal/timecalc"
	"github.com/Tiliavir/clocktime/internal/tzdetect"
)

var (
	detectTZ   string
	detectJSON bool
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect the local timezone and match it to a country",
	Args:  cobra.NoArgs,
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectTZ, "tz", "", "Resolve this IANA zone instead of the host's")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print the detection result as JSON")
}

func runDetect(cmd *cobra.Command, args []string) error {
	res := tzdetect.Detect(timezoneSource(detectTZ), catalog.Countries())
	info := tzdetect.Describe(res)

	if detectJSON {
		data, err := json.MarshalIndent(struct {
			Result   model.DetectionResult `json:"result"`
			Location model.LocationInfo    `json:"location"`
		}{res, info}, "", "  ")
		if err != nil {
			fatal(fmt.Errorf("error encoding JSON: %w", err))
		}
		fmt.Println(string(data))
		return nil
	}

	now := time.Now()
	fmt.Printf("Location: %s\n", info.DisplayName)
	fmt.Printf("Timezone: %s (%s)\n", res.Timezone, timecalc.OffsetLabel(now, res.Timezone))
	fmt.Printf("Now:      %s, %s\n", timecalc.FormatClock(now, res.Timezone, cfg.Clock.Use24h), timecalc.FormatDate(now, res.Timezone))
	if res.Error != "" {
		fmt.Fprintln(os.Stderr, "Note:", res.Error)
	}
	return nil
}

// timezoneSource picks the zone to detect: an explicit flag, then the
// configured clock.timezone, then the host.
func timezoneSource(flag string) tzdetect.Source {
	switch {
	case flag != "":
		return tzdetect.Static(flag)
	case cfg.Clock.Timezone != "":
		return tzdetect.Static(cfg.Clock.Timezone)
	default:
		return tzdetect.SystemTimezone
	}
}
