package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateKind records which strategy produced a DateResult.
type DateKind int

const (
	// DateEmpty means the input was blank; there is no date.
	DateEmpty DateKind = iota
	// DateSerial means the input was a spreadsheet day serial.
	DateSerial
	// DateISO means the input already was a YYYY-MM-DD style literal.
	DateISO
	// DateCalendar means a general calendar parser recognized the input.
	DateCalendar
	// DateUnparsed means no strategy matched; Date holds the trimmed input.
	DateUnparsed
)

func (k DateKind) String() string {
	switch k {
	case DateEmpty:
		return "empty"
	case DateSerial:
		return "serial"
	case DateISO:
		return "iso"
	case DateCalendar:
		return "calendar"
	case DateUnparsed:
		return "unparsed"
	default:
		return "unknown"
	}
}

// DateResult is the outcome of NormalizeDate.
type DateResult struct {
	Date string
	Kind DateKind
}

// Canonical reports whether Date is a YYYY-MM-DD calendar date.
func (r DateResult) Canonical() bool {
	return r.Kind == DateSerial || r.Kind == DateISO || r.Kind == DateCalendar
}

const (
	isoLayout = "2006-01-02"

	// maxSerial bounds the values treated as spreadsheet day serials
	// (exclusive). 100000 is the year 2173.
	maxSerial = 100000

	// lotusLeapSerial is the serial of the 29th of February 1900, a day
	// that never existed but that spreadsheets count anyway.
	lotusLeapSerial = 60
)

//nolint:gochecknoglobals // compiled once
var (
	isoDateRe   = regexp.MustCompile(`^(\d{4})[/-](\d{2})[/-](\d{2})$`)
	dateRangeRe = regexp.MustCompile(`^(\d{4}[/-]\d{2}[/-]\d{2})\s*(?:to|To|TO|-)\s*(\d{4}[/-]\d{2}[/-]\d{2})$`)
	serialEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// ParseDate converts a raw date into a canonical YYYY-MM-DD string.
// ok is false only when raw is blank. Input that no strategy understands
// is returned trimmed and unchanged.
func ParseDate(raw string) (string, bool) {
	r := NormalizeDate(raw)
	if r.Kind == DateEmpty {
		return "", false
	}
	return r.Date, true
}

// NormalizeDate is ParseDate with the matching strategy reported.
//
// Strategies are tried in order: a date range (only the first date is
// kept), a spreadsheet day serial, a YYYY/MM/DD or YYYY-MM-DD literal,
// then general calendar parsing.
//
// A range must be the whole value. "Dates: 2025/10/03 to 2025/10/04" is
// not a range and, as no other strategy reads it, comes back unparsed.
func NormalizeDate(raw string) DateResult {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DateResult{Kind: DateEmpty}
	}

	if m := dateRangeRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}

	if r, ok := fromSerial(s); ok {
		return r
	}
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return DateResult{Date: m[1] + "-" + m[2] + "-" + m[3], Kind: DateISO}
	}
	if r, ok := fromCalendar(s); ok {
		return r
	}
	return DateResult{Date: s, Kind: DateUnparsed}
}

// ParseDateValue is ParseDate for values read straight from storage.
// Numbers are treated as spreadsheet serials, time values are formatted
// directly.
func ParseDateValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return ParseDate(x)
	case []byte:
		return ParseDate(string(x))
	case time.Time:
		if x.IsZero() {
			return "", false
		}
		return x.UTC().Format(isoLayout), true
	case int:
		return ParseDate(strconv.Itoa(x))
	case int64:
		return ParseDate(strconv.FormatInt(x, 10))
	case float64:
		return ParseDate(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		return "", false
	}
}

// SerialToDate converts a spreadsheet day serial to a calendar date.
// Serial 1 is 1900-01-01. Serials above 59 are shifted back a day to
// undo the phantom 1900-02-29, which serial 60 itself maps to.
func SerialToDate(serial float64) (string, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 || serial >= maxSerial {
		return "", false
	}
	days := int(math.Floor(serial))
	if days == lotusLeapSerial {
		return "1900-02-29", true
	}
	t := serialEpoch.AddDate(0, 0, days-1)
	if days > lotusLeapSerial {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format(isoLayout), true
}

func fromSerial(s string) (DateResult, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return DateResult{}, false
	}
	d, ok := SerialToDate(f)
	if !ok {
		return DateResult{}, false
	}
	return DateResult{Date: d, Kind: DateSerial}, true
}

func fromCalendar(s string) (r DateResult, ok bool) {
	// dateparse is not total on every input.
	defer func() {
		if recover() != nil {
			r, ok = DateResult{}, false
		}
	}()

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return DateResult{}, false
	}
	return DateResult{Date: t.UTC().Format(isoLayout), Kind: DateCalendar}, true
}

// ParseDateRange splits "2025/10/03 to 2025/10/05" into its canonical
// start and end dates. Input that is not a range yields ParseDate's result
// as start and an empty end.
func ParseDateRange(raw string) (start, end string) {
	s := strings.TrimSpace(raw)
	if m := dateRangeRe.FindStringSubmatch(s); m != nil {
		start, _ = ParseDate(m[1])
		end, _ = ParseDate(m[2])
		return start, end
	}
	start, _ = ParseDate(s)
	return start, ""
}

//nolint:gochecknoglobals // compiled once
var pgnDateRe = regexp.MustCompile(`^(\d{4}|\?{4})\.(\d{2}|\?{2})\.(\d{2}|\?{2})$`)

// ParsePGNDate normalizes a PGN Date tag ("2025.10.03"). Unknown month or
// day parts ("2025.??.??") keep only the known prefix ("2025"). ok is false
// when the year itself is unknown or the tag is blank.
func ParsePGNDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	m := pgnDateRe.FindStringSubmatch(s)
	if m == nil {
		return ParseDate(s)
	}
	year, month, day := m[1], m[2], m[3]
	switch {
	case strings.HasPrefix(year, "?"):
		return "", false
	case strings.HasPrefix(month, "?"):
		return year, true
	case strings.HasPrefix(day, "?"):
		return year + "-" + month, true
	default:
		return year + "-" + month + "-" + day, true
	}
}
