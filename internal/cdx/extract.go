package cdx

import (
	"strings"

	"waybackseller/internal/models"
	"waybackseller/pkg/utils"
)

// Query-string markers that precede a seller identifier.
var sellerMarkers = []string{"&seller=", "?seller="}

var strs = utils.NewStringHelper()

// ParseLine turns one "<timestamp> <original_url>" line into a record.
// Lines without a space (headers, truncated reads) yield ok=false.
func ParseLine(line string) (models.CaptureRecord, bool) {
	if !strings.Contains(line, " ") {
		return models.CaptureRecord{}, false
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return models.CaptureRecord{}, false
	}

	return models.CaptureRecord{
		Timestamp: fields[0],
		URL:       ExtractIdentifier(fields[1]),
	}, true
}

// ExtractIdentifier returns the value of the seller key when the URL carries
// one, and the URL unchanged otherwise. The last marker occurrence wins.
func ExtractIdentifier(rawURL string) string {
	id := rawURL
	for _, marker := range sellerMarkers {
		i := strings.LastIndex(id, marker)
		if i < 0 {
			continue
		}

		id = strs.SplitBefore(id[i+len(marker):], "&")
	}

	return id
}
