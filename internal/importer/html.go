// Package importer reads time records from saved personal-best pages,
// CSV exports and YAML record files, and writes YAML record files.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/okian/lanes/internal/domain/model"
	"golang.org/x/net/html"
)

// pageDateLayout is how dates appear on personal-best pages.
const pageDateLayout = "Jan 2, 2006"

// bestsColumns must all appear as header cells for a table to be read.
var bestsColumns = []string{"Event", "Time", "Meet", "Date"}

// PersonalBest is one row of a personal-bests table. Event is already
// reduced to "<distance> <stroke>" and Date to YYYY-MM-DD (empty when the
// page date could not be read).
type PersonalBest struct {
	Event string
	Time  string
	Meet  string
	Date  string
}

// Athlete identifies whose page was read.
type Athlete struct {
	AthleteID   int64
	AthleteName string
	TeamID      int64
	TeamName    string
	Season      int
}

// Record combines a personal best with the athlete it belongs to.
func (pb PersonalBest) Record(a Athlete) model.RawRecord {
	return model.RawRecord{
		AthleteID:   a.AthleteID,
		AthleteName: a.AthleteName,
		TeamID:      a.TeamID,
		TeamName:    a.TeamName,
		Season:      a.Season,
		Event:       pb.Event,
		Time:        pb.Time,
		Meet:        pb.Meet,
		Date:        pb.Date,
	}
}

// htmlTable collects the cells of one top-level table.
type htmlTable struct {
	headers []string
	rows    [][]string
}

func (t *htmlTable) isBests() bool {
	have := make(map[string]bool, len(t.headers))
	for _, h := range t.headers {
		have[h] = true
	}
	for _, c := range bestsColumns {
		if !have[c] {
			return false
		}
	}
	return true
}

// ParseHTML reads the first table whose header cells include Event, Time,
// Meet and Date. Only rows inside tbody with at least four cells are used,
// and only yard swims ("100 Y Free") are kept.
func ParseHTML(r io.Reader) ([]PersonalBest, error) {
	z := html.NewTokenizer(r)

	var (
		tbl      *htmlTable
		depth    int
		inBody   bool
		inHeader bool
		inCell   bool
		row      []string
		text     strings.Builder
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("read html: %w", err)
			}
			return nil, ErrNoBestsTable
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "table":
				depth++
				if depth == 1 {
					tbl = &htmlTable{}
				}
			case "tbody":
				inBody = depth == 1
			case "tr":
				row = row[:0]
			case "th":
				inHeader = depth == 1
				text.Reset()
			case "td":
				inCell = depth == 1 && inBody
				text.Reset()
			}
		case html.TextToken:
			if inHeader || inCell {
				text.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "th":
				if inHeader {
					tbl.headers = append(tbl.headers, collapse(text.String()))
				}
				inHeader = false
			case "td":
				if inCell {
					row = append(row, collapse(text.String()))
				}
				inCell = false
			case "tr":
				if depth == 1 && inBody && len(row) > 0 {
					tbl.rows = append(tbl.rows, append([]string(nil), row...))
				}
			case "tbody":
				if depth == 1 {
					inBody = false
				}
			case "table":
				depth--
				if depth == 0 && tbl != nil {
					if tbl.isBests() {
						return bestsFromRows(tbl.rows), nil
					}
					tbl = nil
				}
			}
		}
	}
}

func bestsFromRows(rows [][]string) []PersonalBest {
	out := make([]PersonalBest, 0, len(rows))
	for _, cells := range rows {
		if len(cells) < len(bestsColumns) {
			continue
		}
		parts := strings.Fields(cells[0])
		if len(parts) < 3 || parts[1] != "Y" {
			continue
		}
		pb := PersonalBest{
			Event: parts[0] + " " + strings.Join(parts[2:], " "),
			Time:  cells[1],
			Meet:  cells[2],
		}
		if d, err := time.Parse(pageDateLayout, cells[3]); err == nil {
			pb.Date = d.Format(model.DateLayout)
		}
		out = append(out, pb)
	}
	return out
}

// collapse trims s and folds inner runs of whitespace to one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
