package unformat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Month names, long forms first so alternation prefers them.
var monthNames = []struct {
	name  string
	month time.Month
}{
	{"January", time.January}, {"Jan", time.January},
	{"February", time.February}, {"Feb", time.February},
	{"March", time.March}, {"Mar", time.March},
	{"April", time.April}, {"Apr", time.April},
	{"May", time.May},
	{"June", time.June}, {"Jun", time.June},
	{"July", time.July}, {"Jul", time.July},
	{"August", time.August}, {"Aug", time.August},
	{"September", time.September}, {"Sep", time.September},
	{"October", time.October}, {"Oct", time.October},
	{"November", time.November}, {"Nov", time.November},
	{"December", time.December}, {"Dec", time.December},
}

var monthByName = func() map[string]time.Month {
	m := make(map[string]time.Month, len(monthNames))
	for _, mn := range monthNames {
		m[strings.ToLower(mn.name)] = mn.month
	}
	return m
}()

var allMonthsPat = func() string {
	names := make([]string, len(monthNames))
	for i, mn := range monthNames {
		names[i] = mn.name
	}
	return "(" + strings.Join(names, "|") + ")"
}()

// Sub-patterns shared by the date dialects. timePat opens three capturing
// groups, the others one each.
const (
	daysPat   = `(Mon|Tue|Wed|Thu|Fri|Sat|Sun)`
	monthsPat = `(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`
	timePat   = `([0-9]{1,2}:[0-9]{1,2}(:[0-9]{1,2}(\.[0-9]+)?)?)`
	amPat     = `(\s+[AP]M)`
	tzPat     = `(\s+[-+][0-9][0-9]?:?[0-9][0-9])`
)

type dateOrder int

// The YMD, MDY and DMY orders read the whole date from one group.
// orderFields reads day, month and year from separate groups, and
// orderMonthDay reads month and day and assumes the current year.
const (
	orderTimeOnly dateOrder = iota
	orderYMD
	orderMDY
	orderDMY
	orderFields
	orderMonthDay
)

// A dateLayout is one date/time dialect. Offsets are relative to the
// field's own capturing group; zero means the dialect has no such part.
type dateLayout struct {
	pattern string
	groups  int
	order   dateOrder

	date             int // YMD, MDY and DMY
	day, month, year int // orderFields and orderMonthDay
	hms, ampm, zone  int
}

var (
	// 2011-10-05T14:48:00.000+01:00
	isoDate = dateLayout{
		pattern: `([0-9]{4}-[0-9][0-9]-[0-9][0-9])((\s+|T)` + timePat + `)?(Z|\s*[-+][0-9][0-9]:?[0-9][0-9])?`,
		groups:  7,
		order:   orderYMD,
		date:    1, hms: 4, zone: 7,
	}
	// 20/1/1972 10:21:36 AM +1:00
	globalDate = dateLayout{
		pattern: `([0-9]{1,2}[-/]([0-9]{1,2}|` + allMonthsPat + `)[-/][0-9]{4})(\s+` + timePat + `)?` + amPat + `?` + tzPat + `?`,
		groups:  9,
		order:   orderDMY,
		date:    1, hms: 5, ampm: 8, zone: 9,
	}
	// 1/20/1972 10:21:36 AM +1:00
	usDate = dateLayout{
		pattern: `(([0-9]{1,2}|` + allMonthsPat + `)[-/][0-9]{1,2}[-/][0-9]{4})(\s+` + timePat + `)?` + amPat + `?` + tzPat + `?`,
		groups:  9,
		order:   orderMDY,
		date:    1, hms: 5, ampm: 8, zone: 9,
	}
	// Mon, 20 Jan 1972 10:21:36 +1000
	emailDate = dateLayout{
		pattern: `(` + daysPat + `,\s+)?([0-9]{1,2}\s+` + monthsPat + `\s+[0-9]{4})\s+` + timePat + tzPat,
		groups:  8,
		order:   orderDMY,
		date:    3, hms: 5, zone: 8,
	}
	// 21/Nov/2011:00:07:11 +0000
	httpDate = dateLayout{
		pattern: `([0-9]{1,2}[-/]` + monthsPat + `[-/][0-9]{4}):` + timePat + tzPat,
		groups:  6,
		order:   orderDMY,
		date:    1, hms: 3, zone: 6,
	}
	// Sun Sep 16 01:03:52 1973
	ctimeDate = dateLayout{
		pattern: `(` + daysPat + `)\s+` + monthsPat + `\s+([0-9]{1,2})\s+` + timePat + `\s+([0-9]{4})`,
		groups:  8,
		order:   orderFields,
		day:     4, month: 3, year: 8, hms: 5,
	}
	// 10:21:36 PM -5:30
	timeOfDay = dateLayout{
		pattern: timePat + `?` + amPat + `?` + tzPat + `?`,
		groups:  5,
		order:   orderTimeOnly,
		hms:     1, ampm: 4, zone: 5,
	}
	// Nov  9 03:37:44
	syslogDate = dateLayout{
		pattern: monthsPat + `(\s+)([0-9]+)(\s+)([0-9]{1,2}:[0-9]{1,2}:[0-9]{1,2})?`,
		groups:  5,
		order:   orderMonthDay,
		month:   1, day: 3, hms: 5,
	}
)

func dateRule(l dateLayout) typeRule {
	return typeRule{
		groups:  l.groups,
		pattern: static(l.pattern),
		bind: func(group int) convertMatch {
			return l.converter(group)
		},
	}
}

// converter returns the date assembler for a field whose own group is
// number group. All offsets are resolved here, once, at compile time.
func (l dateLayout) converter(group int) convertMatch {
	at := func(off int) int {
		if off == 0 {
			return 0
		}
		return group + off
	}
	b := dateBinding{
		order: l.order,
		date:  at(l.date),
		day:   at(l.day),
		month: at(l.month),
		year:  at(l.year),
		hms:   at(l.hms),
		ampm:  at(l.ampm),
		zone:  at(l.zone),
	}
	return b.convert
}

// dateBinding holds absolute engine group numbers for one compiled field.
type dateBinding struct {
	order                  dateOrder
	date, day, month, year int
	hms, ampm, zone        int
}

func (b dateBinding) text(m *regexp2.Match, n int) string {
	if n == 0 {
		return ""
	}
	s, _ := groupText(m, n)
	return s
}

func (b dateBinding) convert(_ string, m *regexp2.Match) (any, error) {
	var d, mo, y string
	switch b.order {
	case orderYMD, orderMDY, orderDMY:
		parts := strings.FieldsFunc(b.text(m, b.date), func(r rune) bool {
			return r == '-' || r == '/' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed date %q", b.text(m, b.date))
		}
		switch b.order {
		case orderYMD:
			y, mo, d = parts[0], parts[1], parts[2]
		case orderMDY:
			mo, d, y = parts[0], parts[1], parts[2]
		case orderDMY:
			d, mo, y = parts[0], parts[1], parts[2]
		}
	case orderFields:
		d, mo, y = b.text(m, b.day), b.text(m, b.month), b.text(m, b.year)
	case orderMonthDay:
		d, mo = b.text(m, b.day), b.text(m, b.month)
		y = strconv.Itoa(time.Now().Year())
	}

	var clock clockTime
	if hms := b.text(m, b.hms); hms != "" {
		var err error
		if clock, err = parseClock(hms); err != nil {
			return nil, err
		}
	}
	if am := strings.TrimSpace(b.text(m, b.ampm)); am != "" {
		clock.hour = adjustAMPM(clock.hour, am)
	}
	loc, err := parseZone(b.text(m, b.zone))
	if err != nil {
		return nil, err
	}

	if b.order == orderTimeOnly {
		return clock.on(0, time.January, 1, loc)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return nil, fmt.Errorf("invalid year %q", y)
	}
	month, err := parseMonth(mo)
	if err != nil {
		return nil, err
	}
	day, err := strconv.Atoi(d)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q", d)
	}
	return clock.on(year, month, day, loc)
}

// adjustAMPM applies a 12-hour clock marker. PM adds 12 to any hour but
// 12, even one already past noon; the result is then rejected by the
// range check in clockTime.on.
func adjustAMPM(hour int, marker string) int {
	switch {
	case strings.EqualFold(marker, "AM") && hour == 12:
		return 0
	case strings.EqualFold(marker, "PM") && hour != 12:
		return hour + 12
	}
	return hour
}

type clockTime struct {
	hour, minute, second, nanos int
}

// parseClock reads "H:M", "H:M:S" or "H:M:S.frac".
func parseClock(s string) (clockTime, error) {
	var c clockTime
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return c, fmt.Errorf("malformed time %q", s)
	}
	var err error
	if c.hour, err = strconv.Atoi(parts[0]); err != nil {
		return c, fmt.Errorf("invalid hour in %q", s)
	}
	if c.minute, err = strconv.Atoi(parts[1]); err != nil {
		return c, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		sec, frac, _ := strings.Cut(parts[2], ".")
		if c.second, err = strconv.Atoi(sec); err != nil {
			return c, fmt.Errorf("invalid second in %q", s)
		}
		if c.nanos, err = fractionNanos(frac); err != nil {
			return c, fmt.Errorf("invalid fraction in %q", s)
		}
	}
	return c, nil
}

// fractionNanos converts the digits after a decimal point to nanoseconds,
// ignoring digits beyond the ninth.
func fractionNanos(frac string) (int, error) {
	if frac == "" {
		return 0, nil
	}
	if len(frac) > 9 {
		frac = frac[:9]
	}
	n, err := strconv.Atoi(frac)
	if err != nil {
		return 0, err
	}
	for i := len(frac); i < 9; i++ {
		n *= 10
	}
	return n, nil
}

func (c clockTime) on(year int, month time.Month, day int, loc *time.Location) (time.Time, error) {
	switch {
	case month < time.January || month > time.December:
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	case day < 1 || day > daysIn(year, month):
		return time.Time{}, fmt.Errorf("day %d out of range for %s %d", day, month, year)
	case c.hour < 0 || c.hour > 23:
		return time.Time{}, fmt.Errorf("hour %d out of range", c.hour)
	case c.minute < 0 || c.minute > 59:
		return time.Time{}, fmt.Errorf("minute %d out of range", c.minute)
	case c.second < 0 || c.second > 59:
		return time.Time{}, fmt.Errorf("second %d out of range", c.second)
	}
	return time.Date(year, month, day, c.hour, c.minute, c.second, c.nanos, loc), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func parseMonth(s string) (time.Month, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Month(n), nil
	}
	if m, ok := monthByName[strings.ToLower(s)]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

// parseZone reads "Z", "+H:MM", "+HH:MM", "+HMM" or "+HHMM". An empty zone
// is UTC.
func parseZone(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "Z" || s == "z" {
		return time.UTC, nil
	}
	sign := s[0]
	if sign != '+' && sign != '-' {
		return nil, fmt.Errorf("unsupported time zone %q", s)
	}
	var hh, mm string
	switch rest := s[1:]; {
	case strings.Contains(rest, ":"):
		hh, mm, _ = strings.Cut(rest, ":")
	case len(rest) == 3:
		hh, mm = rest[:1], rest[1:]
	case len(rest) == 4:
		hh, mm = rest[:2], rest[2:]
	default:
		return nil, fmt.Errorf("malformed time zone %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return nil, fmt.Errorf("malformed time zone %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return nil, fmt.Errorf("malformed time zone %q", s)
	}
	offset := (h*60 + m) * 60
	if sign == '-' {
		offset = -offset
	}
	return time.FixedZone(s, offset), nil
}
