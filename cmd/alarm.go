package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clocktime/internal/alarm"
	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/timecalc"
	"github.com/Tiliavir/clocktime/internal/tzdetect"
)

var (
	alarmTZ    string
	alarmLabel string
	alarmDays  string
)

var alarmCmd = &cobra.Command{
	Use:   "alarm",
	Short: "Manage local alarms",
}

var alarmAddCmd = &cobra.Command{
	Use:     "add <HH:MM>",
	Short:   "Add an alarm",
	Example: "  clocktime alarm add 07:30 --tz JP --label Standup --days weekdays",
	Args:    cobra.ExactArgs(1),
	RunE:    runAlarmAdd,
}

var alarmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alarms and when they ring next",
	Args:  cobra.NoArgs,
	RunE:  runAlarmList,
}

var alarmToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable an alarm",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlarmToggle,
}

var alarmDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an alarm",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlarmDelete,
}

func init() {
	alarmAddCmd.Flags().StringVar(&alarmTZ, "tz", "", "Country code or IANA zone; defaults to the detected zone")
	alarmAddCmd.Flags().StringVar(&alarmLabel, "label", "", "Label (default \"Alarm\")")
	alarmAddCmd.Flags().StringVar(&alarmDays, "days", "daily", "daily, weekdays, weekends or a comma-separated list of weekdays")

	alarmCmd.AddCommand(alarmAddCmd)
	alarmCmd.AddCommand(alarmListCmd)
	alarmCmd.AddCommand(alarmToggleCmd)
	alarmCmd.AddCommand(alarmDeleteCmd)
	alarmCmd.AddCommand(alarmExportCmd)
}

func runAlarmAdd(cmd *cobra.Command, args []string) error {
	var tz string
	if alarmTZ == "" {
		tz = detectedZone()
	} else {
		var ok bool
		if tz, ok = catalog.ResolveZone(alarmTZ); !ok {
			usageError("unknown location %q", alarmTZ)
		}
	}

	a, err := alarm.NewManager(dataDir, logger).Add(alarm.Input{
		Time:     args[0],
		Timezone: tz,
		Label:    alarmLabel,
		Days:     splitList(alarmDays),
	})
	if err != nil {
		usageError("invalid alarm: %v", err)
	}
	fmt.Printf("Added alarm %s: %s %s (%s) %s\n", a.ID, a.Time, a.Label, a.Timezone, strings.Join(a.Days, ","))
	return nil
}

func runAlarmList(cmd *cobra.Command, args []string) error {
	m := alarm.NewManager(dataDir, logger)
	alarms := m.List()
	if len(alarms) == 0 {
		fmt.Println("No alarms.")
		return nil
	}

	now := time.Now()
	next := map[string]time.Time{}
	for _, u := range m.Next(now) {
		next[u.Alarm.ID] = u.At
	}

	for _, a := range alarms {
		state := "off"
		if a.Enabled {
			state = "on "
		}
		fmt.Printf("%s  [%s]  %s  %-20s %s  %s", a.ID, state, a.Time, a.Timezone, a.Label, strings.Join(a.Days, ","))
		if at, ok := next[a.ID]; ok {
			fmt.Printf("  (%s, in %s)", timecalc.DayLabel(at, now), timecalc.FormatDuration(int64(at.Sub(now).Seconds())))
		}
		fmt.Println()
	}
	return nil
}

func runAlarmToggle(cmd *cobra.Command, args []string) error {
	a, err := alarm.NewManager(dataDir, logger).Toggle(args[0])
	if err != nil {
		usageError("%v", err)
	}
	state := "disabled"
	if a.Enabled {
		state = "enabled"
	}
	fmt.Printf("Alarm %s %s\n", a.ID, state)
	return nil
}

func runAlarmDelete(cmd *cobra.Command, args []string) error {
	if err := alarm.NewManager(dataDir, logger).Delete(args[0]); err != nil {
		usageError("%v", err)
	}
	fmt.Printf("Deleted alarm %s\n", args[0])
	return nil
}

// detectedZone is the zone new alarms default to.
func detectedZone() string {
	return tzdetect.Detect(timezoneSource(""), catalog.Countries()).Timezone
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
