package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clocktime/internal/alarm"
	"github.com/Tiliavir/clocktime/internal/model"
)

var exportFormat string

var alarmExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export alarms to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	alarmExportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
}

func runExport(cmd *cobra.Command, args []string) error {
	alarms := alarm.NewManager(dataDir, logger).List()
	if err := writeAlarms(os.Stdout, alarms, exportFormat); err != nil {
		usageError("%v", err)
	}
	return nil
}

func writeAlarms(w io.Writer, alarms []model.Alarm, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(alarms, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "md":
		writeMarkdown(w, alarms)
	case "csv", "":
		writeCSV(w, alarms)
	default:
		return fmt.Errorf("unknown format %q (want csv, json or md)", format)
	}
	return nil
}

func writeCSV(w io.Writer, alarms []model.Alarm) {
	fmt.Fprintln(w, "id,time,timezone,label,enabled,days")
	for _, a := range alarms {
		fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s\n",
			csvEscape(a.ID),
			csvEscape(a.Time),
			csvEscape(a.Timezone),
			csvEscape(a.Label),
			strconv.FormatBool(a.Enabled),
			csvEscape(strings.Join(a.Days, ";")),
		)
	}
}

func writeMarkdown(w io.Writer, alarms []model.Alarm) {
	if len(alarms) == 0 {
		fmt.Fprintln(w, "No alarms.")
		return
	}
	fmt.Fprintln(w, "| Time | Timezone | Label | Days | Enabled |")
	fmt.Fprintln(w, "|------|----------|-------|------|---------|")
	for _, a := range alarms {
		enabled := "no"
		if a.Enabled {
			enabled = "yes"
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n", a.Time, a.Timezone, mdEscape(a.Label), strings.Join(a.Days, ", "), enabled)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
