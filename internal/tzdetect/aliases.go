package tzdetect

// AliasGroup maps a canonical IANA zone to the legacy or equivalent zone
// names that should resolve to the same country. The canonical zone is
// expected to be some country's timezone; this is not enforced.
type AliasGroup struct {
	Canonical string
	Members   []string
}

// Contains reports whether tz is one of the group's members.
func (g AliasGroup) Contains(tz string) bool {
	for _, m := range g.Members {
		if m == tz {
			return true
		}
	}
	return false
}

// DefaultAliases is scanned in order; the first group that yields a country wins.
var DefaultAliases = []AliasGroup{
	{Canonical: "America/New_York", Members: []string{
		"America/New_York",
		"America/Detroit",
		"America/Kentucky/Louisville",
		"America/Kentucky/Monticello",
		"America/Indiana/Indianapolis",
		"America/Indiana/Vincennes",
		"America/Indiana/Winamac",
		"America/Indiana/Marengo",
		"America/Indiana/Petersburg",
		"America/Indiana/Vevay",
	}},
	{Canonical: "America/Los_Angeles", Members: []string{"America/Los_Angeles", "America/Tijuana", "US/Pacific"}},
	{Canonical: "America/Chicago", Members: []string{
		"America/Chicago",
		"America/Indiana/Knox",
		"America/Indiana/Tell_City",
		"America/Menominee",
		"America/North_Dakota/Center",
		"America/North_Dakota/New_Salem",
		"US/Central",
	}},
	{Canonical: "Europe/London", Members: []string{"Europe/London", "GB", "GB-Eire"}},
	{Canonical: "Europe/Berlin", Members: []string{
		"Europe/Berlin",
		"Europe/Amsterdam",
		"Europe/Andorra",
		"Europe/Vienna",
		"Europe/Zurich",
		"Europe/Rome",
		"Europe/Madrid",
		"Europe/Paris",
		"Europe/Brussels",
		"Europe/Prague",
		"Europe/Budapest",
		"Europe/Warsaw",
	}},
	{Canonical: "Asia/Tokyo", Members: []string{"Asia/Tokyo", "Japan"}},
	{Canonical: "Asia/Shanghai", Members: []string{"Asia/Shanghai", "Asia/Chongqing", "Asia/Harbin", "Asia/Kashgar", "Asia/Urumqi", "PRC"}},
	{Canonical: "Asia/Kolkata", Members: []string{"Asia/Kolkata", "Asia/Calcutta", "IST"}},
	{Canonical: "Australia/Sydney", Members: []string{
		"Australia/Sydney",
		"Australia/Melbourne",
		"Australia/Brisbane",
		"Australia/Lindeman",
		"Australia/Currie",
	}},
}
