package reconcile

import (
	"strings"

	"github.com/ymkz/karadex/internal/dam"
	"github.com/ymkz/karadex/internal/store"
)

// masterVersionSuffix is the tag the vendor appends to canonical recordings
// of catalog tracks.
const masterVersionSuffix = "(M@STER VERSION)"

// brandRosters maps a canonical brand tag to the group and unit names the
// vendor files recordings under. The vendor's artist field is inconsistent
// (solo performers, group names, or verbatim unit names), so an exact hit on
// a known roster name is a reliable signal. Brands without an entry simply
// don't contribute this signal.
var brandRosters = map[string][]string{
	"765": {
		"765 MILLION ALLSTARS",
	},
	"sc": {
		"シャイニーカラーズ",
		"イルミネーションスターズ",
		"アンティーカ",
		"放課後クライマックスガールズ",
		"アルストロメリア",
		"ストレイライト",
		"ノクチル",
		"シーズ",
		"コメティック",
	},
}

// IsMatch decides whether a vendor karaoke entry represents the same work as
// the given catalog track. Three independent signals are checked; any one is
// sufficient. Each signal is a strict literal comparison: missed matches get
// retried on the next cycle, false positives would persist bad rows.
func IsMatch(track *store.Track, entry *dam.Entry) bool {
	// Signal 1: a catalog performer name appears in the vendor artist field.
	// Skipped entirely when the track has no performer list.
	if track.Artist != "" {
		for _, name := range strings.Split(track.Artist, ",") {
			if name != "" && strings.Contains(entry.Artist, name) {
				return true
			}
		}
	}

	// Signal 2: the vendor title is exactly the track title with the
	// canonical suffix tag appended.
	if entry.Title == track.Title+masterVersionSuffix {
		return true
	}

	// Signal 3: the vendor artist field, trimmed, is a known roster name of
	// the track's brand.
	if entry.Artist != "" {
		trimmed := strings.TrimSpace(entry.Artist)
		for _, roster := range brandRosters[track.BrandName] {
			if trimmed == roster {
				return true
			}
		}
	}

	return false
}
