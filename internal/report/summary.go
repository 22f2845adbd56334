package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"waybackseller/internal/harvester"
	"waybackseller/internal/timerange"
)

// Summary renders the outcome of a run.
func Summary(domain, sinkKind string, res *harvester.Result) string {
	rows := [][]string{
		{"Domain", domain},
		{"Sink", sinkKind},
	}

	if res.Range != nil {
		rows = append(rows, []string{"Range", fmt.Sprintf("%s → %s", res.Range.From(), res.Range.To())})
	} else {
		rows = append(rows, []string{"Range", "all time"})
	}

	if res.Fetch != nil {
		rows = append(rows,
			[]string{"HTTP status", strconv.Itoa(res.Fetch.StatusCode)},
			[]string{"Bytes read", strconv.FormatInt(res.Fetch.Bytes, 10)},
		)
	}

	rows = append(rows,
		[]string{"Lines", strconv.Itoa(res.Lines)},
		[]string{"Malformed lines", strconv.Itoa(res.Malformed)},
		[]string{"Records", strconv.Itoa(res.Records)},
		[]string{"Stored", strconv.Itoa(res.Stored)},
		[]string{"Skipped (already exist)", strconv.Itoa(res.Duplicates)},
		[]string{"Failed", strconv.Itoa(res.Failed)},
		[]string{"Duration", res.Duration.Round(time.Millisecond).String()},
	)

	if res.FetchErr != nil {
		rows = append(rows, []string{"Fetch error", res.FetchErr.Error()})
	}

	return strings.Join(Table([]string{"Summary", ""}, rows), "\n")
}

// Windows renders the time-frame selector table.
func Windows(selected int) string {
	rows := make([][]string, len(timerange.Windows))

	for i, w := range timerange.Windows {
		mark := ""
		if i == selected {
			mark = "*"
		}

		if i == timerange.DefaultIndex {
			mark += " (fallback)"
		}

		rows[i] = []string{strconv.Itoa(i), w.Key, strconv.Itoa(w.Days), strings.TrimSpace(mark)}
	}

	return strings.Join(Table([]string{"TIME_FRAME", "Window", "Days", ""}, rows), "\n")
}
