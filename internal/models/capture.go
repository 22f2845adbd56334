package models

import "time"

// CaptureRecord is one CDX capture after identifier extraction.
// URL holds the bare seller identifier when one was found, otherwise the
// original URL.
type CaptureRecord struct {
	Timestamp string `json:"date"`
	URL       string `json:"url"`
}

// TableRow is the persisted shape of a capture in wayback_sellerid_data.
type TableRow struct {
	URL      string `json:"url"`
	Date     string `json:"date"`
	UpdateAt string `json:"updateAt"`
}

// Row stamps the record with its insertion time.
func (r CaptureRecord) Row(insertedAt time.Time) TableRow {
	return TableRow{
		URL:      r.URL,
		Date:     r.Timestamp,
		UpdateAt: insertedAt.UTC().Format(time.RFC3339),
	}
}
