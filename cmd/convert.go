package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/timecalc"
)

var (
	convertFrom string
	convertTo   string
	convertDate string
)

var convertCmd = &cobra.Command{
	Use:   "convert <HH:MM>",
	Short: "Convert a wall clock time between two locations",
	Long: `Convert a wall clock time between two locations. --from and --to take a
country code from the built-in table (e.g. DE, JP) or an IANA zone name.`,
	Example: "  clocktime convert 09:30 --from DE --to US",
	Args:    cobra.ExactArgs(1),
	RunE:    runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "Source country code or IANA zone (required)")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "Target country code or IANA zone (required)")
	convertCmd.Flags().StringVar(&convertDate, "date", "", "Day of the time in the source zone (YYYY-MM-DD); defaults to today")
	_ = convertCmd.MarkFlagRequired("from")
	_ = convertCmd.MarkFlagRequired("to")
}

func runConvert(cmd *cobra.Command, args []string) error {
	hhmm := args[0]
	if _, _, err := timecalc.ParseHHMM(hhmm); err != nil {
		usageError("invalid time %q: %v", hhmm, err)
	}
	from, ok := catalog.ResolveZone(convertFrom)
	if !ok {
		usageError("unknown location %q", convertFrom)
	}
	to, ok := catalog.ResolveZone(convertTo)
	if !ok {
		usageError("unknown location %q", convertTo)
	}

	day := time.Now()
	if convertDate != "" {
		loc, _ := time.LoadLocation(from)
		d, err := time.ParseInLocation("2006-01-02", convertDate, loc)
		if err != nil {
			usageError("invalid --date value %q: %v", convertDate, err)
		}
		day = d
	}

	fmt.Printf("%s %s = %s %s\n", hhmm, label(convertFrom, from), timecalc.ConvertTime(hhmm, from, to, day), label(convertTo, to))
	return nil
}

// label names a resolved location the way the user typed it.
func label(input, zone string) string {
	if c, ok := catalog.FindCountry(input); ok {
		return fmt.Sprintf("%s %s (%s)", c.Flag, c.Name, zone)
	}
	return "(" + zone + ")"
}
