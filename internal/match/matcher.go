package match

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ymkz/karadex/internal/report"
	"github.com/ymkz/karadex/internal/store"
	"github.com/ymkz/karadex/internal/util"
)

// alternateVersionMarker flags vendor recordings that are game cuts rather
// than the performed song; those are never bound to a setlist entry.
const alternateVersionMarker = "G@ME VERSION"

// whitespaceRun matches runs of half- and full-width spaces
var whitespaceRun = regexp.MustCompile(`[ \x{3000}]+`)

// Matcher binds vendor request numbers to live-event setlist entries
type Matcher struct {
	store  *store.Store
	logger *report.EventLogger
}

// Config holds matcher configuration
type Config struct {
	Store  *store.Store
	Logger *report.EventLogger
}

// New creates a new Matcher
func New(cfg *Config) *Matcher {
	logger := cfg.Logger
	if logger == nil {
		logger = report.NullLogger()
	}

	return &Matcher{
		store:  cfg.Store,
		logger: logger,
	}
}

// Result represents matching results
type Result struct {
	EventsVisited int
	EventsSkipped int
	SongsBound    int
}

// Run matches the setlists of every stored live event
func (m *Matcher) Run(ctx context.Context) (*Result, error) {
	events, err := m.store.ListLiveEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to load live events: %w", err)
	}

	result := &Result{}
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		bound, err := m.MatchEvent(ev)
		if err != nil {
			return result, err
		}
		if bound < 0 {
			result.EventsSkipped++
			continue
		}
		result.EventsVisited++
		result.SongsBound += bound
	}

	util.SuccessLog("Match: %d events matched, %d skipped", result.EventsVisited, result.EventsSkipped)
	return result, nil
}

// MatchEvent binds request numbers to the unbound entries of one event's
// setlist and persists the per-event bound count. Events without inferred
// brand tags (guest shows and the like) are not karaoke-reconcilable and
// return -1 without touching the store.
func (m *Matcher) MatchEvent(ev *store.LiveEvent) (int, error) {
	if len(ev.BrandNames) == 0 {
		m.logger.Log(report.Event{
			Level:   report.LevelDebug,
			Event:   report.EventSkip,
			EventID: ev.ID,
			Title:   ev.Title,
			Reason:  "no brand tags",
		})
		return -1, nil
	}

	matched := 0
	for i := range ev.Songs {
		song := &ev.Songs[i]

		// Already bound on a previous run; the binding is never removed
		if song.RequestNo != "" {
			matched++
			continue
		}

		patternA, patternB := BuildPatterns(song.Title)

		candidates, err := m.store.KaraokeSongsByTitlePatterns(patternA, patternB)
		if err != nil {
			return 0, err
		}

		for _, candidate := range candidates {
			if strings.Contains(candidate.Title, alternateVersionMarker) {
				continue
			}

			if err := m.store.BindSetlistRequestNo(ev.ID, song.Position, candidate.RequestNo); err != nil {
				return 0, err
			}
			song.RequestNo = candidate.RequestNo

			m.logger.Log(report.Event{
				Level:     report.LevelInfo,
				Event:     report.EventMatch,
				EventID:   ev.ID,
				Title:     song.Title,
				RequestNo: candidate.RequestNo,
				Pattern:   patternA,
			})
			util.DebugLog("Match: %q -> %q (%s)", song.Title, candidate.Title, candidate.RequestNo)
			matched++
			break
		}
	}

	if err := m.store.SetLiveEventMatchedSongs(ev.ID, matched); err != nil {
		return 0, err
	}
	ev.MatchedSongs = matched

	return matched, nil
}

// BuildPatterns derives the two LIKE patterns for a setlist title: pattern A
// folds platform-dependent characters and turns whitespace runs into
// wildcards; pattern B additionally folds full-width symbols to half-width.
// Both are queried because the vendor stores symbols in either width.
func BuildPatterns(title string) (string, string) {
	normalized := ReplacePlatformDependent(title)
	patternA := whitespaceRun.ReplaceAllString(normalized, "%") + "%"
	patternB := FoldWidth(patternA)
	return patternA, patternB
}
