package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
)

// ErrNoStandings is returned when a page has no table with a Name column.
var ErrNoStandings = errors.New("no standings table found")

// Standings is what one standings page yields.
type Standings struct {
	Tournament domain.RawRow
	Players    []domain.RawRow
}

// infoFields maps labels of the key/value table above the standings to
// tournament columns. Labels are compared after lowercasing and dropping
// the trailing colon.
//
//nolint:gochecknoglobals // lookup table
var infoFields = map[string]string{
	"organizer":        "organizer",
	"organizer(s)":     "organizer",
	"organiser":        "organizer",
	"federation":       "federation",
	"chief arbiter":    "chief_arbiter",
	"arbiter":          "chief_arbiter",
	"time control":     "time_control",
	"location":         "location",
	"place":            "location",
	"venue":            "location",
	"date":             "date",
	"dates":            "date",
	"start date":       "start_date",
	"end date":         "end_date",
	"rounds":           "rounds",
	"number of rounds": "rounds",
}

// standingsColumns maps standings headers to player columns. Headers not
// listed here are tie-break columns.
//
//nolint:gochecknoglobals // lookup table
var standingsColumns = map[string]string{
	"rk":     "rank",
	"rank":   "rank",
	"pos":    "rank",
	"place":  "rank",
	"sno":    "start_no",
	"no":     "start_no",
	"snr":    "start_no",
	"title":  "title",
	"name":   "name",
	"player": "name",
	"fed":    "federation",
	"fide":   "federation",
	"rtg":    "rating",
	"elo":    "rating",
	"rating": "rating",
	"pts":    "points",
	"points": "points",
	"score":  "points",
}

// ParseStandingsHTML reads a standings page exported by the pairing
// software. Cell values are kept as text; normalization happens on read.
func ParseStandingsHTML(r io.Reader) (*Standings, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(node)

	name := strings.TrimSpace(doc.Find("h1").First().Text())
	if name == "" {
		name = strings.TrimSpace(doc.Find("title").First().Text())
	}
	name = collapseSpace(name)

	tournament := domain.RawRow{}
	if name != "" {
		tournament["name"] = name
		tournament["id"] = TournamentIDFor(name)
	}

	var standings *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if isStandingsTable(table) {
			standings = table
			return false
		}
		readInfoTable(table, tournament)
		return true
	})

	if desc := doc.Find(".description, #description").First(); desc.Length() > 0 {
		if md := descriptionMarkdown(desc); md != "" {
			tournament["description"] = md
		}
	}

	if standings == nil {
		return nil, ErrNoStandings
	}
	players := readStandings(standings)
	if len(players) == 0 {
		return nil, ErrNoRows
	}
	return &Standings{Tournament: tournament, Players: players}, nil
}

func isStandingsTable(table *goquery.Selection) bool {
	for _, h := range headerCells(table) {
		if column, ok := standingsColumns[headerToken(h)]; ok && column == "name" {
			return true
		}
	}
	return false
}

// headerCells returns the text of the first row of table.
func headerCells(table *goquery.Selection) []string {
	var cells []string
	table.Find("tr").First().Find("th, td").Each(func(_ int, c *goquery.Selection) {
		cells = append(cells, collapseSpace(c.Text()))
	})
	return cells
}

// headerToken turns "Rk." or "Rtg" into the lookup key of standingsColumns.
func headerToken(h string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(h), ".:"))
}

func readInfoTable(table *goquery.Selection, into domain.RawRow) {
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td, th")
		if cells.Length() != 2 {
			return
		}
		label := strings.ToLower(collapseSpace(cells.Eq(0).Text()))
		label = strings.TrimSuffix(label, ":")
		label = strings.TrimSpace(label)
		if strings.HasPrefix(label, "time control") {
			label = "time control"
		}
		column, ok := infoFields[label]
		if !ok {
			return
		}
		if value := collapseSpace(cells.Eq(1).Text()); value != "" {
			if _, seen := into[column]; !seen {
				into[column] = value
			}
		}
	})
}

func readStandings(table *goquery.Selection) []domain.RawRow {
	headers := headerCells(table)
	var rows []domain.RawRow

	table.Find("tr").Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		row := domain.RawRow{}
		tieBreaks := map[string]any{}
		cells.Each(func(i int, c *goquery.Selection) {
			if i >= len(headers) || headers[i] == "" {
				return
			}
			value := collapseSpace(c.Text())
			if value == "" {
				return
			}
			if column, ok := standingsColumns[headerToken(headers[i])]; ok {
				if _, seen := row[column]; !seen {
					row[column] = value
				}
				return
			}
			tieBreaks[headers[i]] = value
		})
		if row.String("name") == "" {
			return
		}
		if len(tieBreaks) > 0 {
			row["tie_breaks"] = tieBreaks
		}
		rows = append(rows, row)
	})
	return rows
}

func descriptionMarkdown(sel *goquery.Selection) string {
	raw, err := goquery.OuterHtml(sel)
	if err != nil {
		return collapseSpace(sel.Text())
	}
	md, err := htmltomarkdown.ConvertString(raw)
	if err != nil {
		return collapseSpace(sel.Text())
	}
	return strings.TrimSpace(md)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
