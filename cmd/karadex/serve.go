package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/unicode/norm"

	"github.com/ymkz/karadex/internal/store"
	"github.com/ymkz/karadex/internal/util"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only REST API over the crawled data",
	Long: `Serve read-only JSON projections of the stored tracks, karaoke
listings and live events. The API never writes; all data comes from the
crawl commands.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", ":8080", "listen address")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

// api carries the handlers' shared dependencies
type api struct {
	store *store.Store
}

func runServe(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	dbPath := viper.GetString("db")
	util.InfoLog("Opening database: %s", dbPath)
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	a := &api{store: db}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/api/songs/brand/:brandName", a.songsByBrand)
	e.GET("/api/songs/search/:keyword", a.songsByKeyword)
	e.GET("/api/songs/title/:name", a.songsByTitle)
	e.GET("/api/live-events", a.liveEvents)
	e.GET("/api/live-events/:id/songs", a.liveEventSongs)

	listen := viper.GetString("listen")
	util.InfoLog("Listening on %s", listen)
	return e.Start(listen)
}

// trackResponse is the JSON projection of a track and its karaoke listings
type trackResponse struct {
	ID                  int64             `json:"id"`
	Title               string            `json:"title"`
	TitleKana           string            `json:"titleKana"`
	Artist              string            `json:"artist,omitempty"`
	BrandName           string            `json:"brandName"`
	FirstKaraokeRelease *string           `json:"dateOfFirstKaraokeRelease"`
	KaraokeSongs        []karaokeResponse `json:"karaokeSongs"`
}

// karaokeResponse is the JSON projection of one vendor listing
type karaokeResponse struct {
	RequestNo   string `json:"requestNo"`
	Title       string `json:"title"`
	ReleaseDate string `json:"releaseDate,omitempty"`
}

// liveEventResponse is the JSON projection of a live event and its setlist
type liveEventResponse struct {
	ID           int64              `json:"id"`
	Title        string             `json:"title"`
	Date         string             `json:"date"`
	BrandNames   []string           `json:"brandNames"`
	MatchedSongs int                `json:"numOfMatchedSongs"`
	Songs        []setlistEntryJSON `json:"songs"`
}

type setlistEntryJSON struct {
	Title     string `json:"title"`
	Artist    string `json:"artist,omitempty"`
	RequestNo string `json:"requestNo,omitempty"`
}

// songsByBrand returns every track of a brand with its karaoke listings
func (a *api) songsByBrand(c echo.Context) error {
	tracks, err := a.store.TracksByBrand(c.Param("brandName"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return a.respondTracks(c, tracks)
}

// songsByKeyword searches title, kana reading and artist
func (a *api) songsByKeyword(c echo.Context) error {
	keyword := norm.NFC.String(c.Param("keyword"))
	tracks, err := a.store.SearchTracks(keyword, c.QueryParam("brand"), true)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return a.respondTracks(c, tracks)
}

// songsByTitle searches title and kana reading only
func (a *api) songsByTitle(c echo.Context) error {
	name := norm.NFC.String(c.Param("name"))
	tracks, err := a.store.SearchTracks(name, c.QueryParam("brand"), false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return a.respondTracks(c, tracks)
}

// liveEvents returns all stored live events with their setlists
func (a *api) liveEvents(c echo.Context) error {
	events, err := a.store.ListLiveEvents()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	response := make([]liveEventResponse, 0, len(events))
	for _, ev := range events {
		response = append(response, liveEventJSON(ev))
	}
	return c.JSON(http.StatusOK, response)
}

// liveEventSongs returns the bound karaoke listings of one event in setlist
// order. Unknown events and unbound entries yield an empty array, matching
// the playback use case (nothing to queue).
func (a *api) liveEventSongs(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	ev, err := a.store.GetLiveEvent(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if ev == nil {
		return c.JSON(http.StatusOK, []karaokeResponse{})
	}

	var requestNos []string
	for _, song := range ev.Songs {
		if song.RequestNo != "" {
			requestNos = append(requestNos, song.RequestNo)
		}
	}

	byRequestNo, err := a.store.KaraokeSongsByRequestNos(requestNos)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Re-order to the authored setlist sequence
	ordered := make([]karaokeResponse, 0, len(requestNos))
	for _, song := range ev.Songs {
		if k, ok := byRequestNo[song.RequestNo]; ok {
			ordered = append(ordered, karaokeJSON(k))
		}
	}
	return c.JSON(http.StatusOK, ordered)
}

// respondTracks attaches karaoke listings to each track and writes the
// JSON response
func (a *api) respondTracks(c echo.Context, tracks []*store.Track) error {
	response := make([]trackResponse, 0, len(tracks))
	for _, t := range tracks {
		matches, err := a.store.KaraokeSongsByTrack(t.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		tr := trackResponse{
			ID:           t.ID,
			Title:        t.Title,
			TitleKana:    t.TitleKana,
			Artist:       t.Artist,
			BrandName:    t.BrandName,
			KaraokeSongs: make([]karaokeResponse, 0, len(matches)),
		}
		if t.FirstKaraokeRelease != nil {
			formatted := t.FirstKaraokeRelease.Format(time.RFC3339)
			tr.FirstKaraokeRelease = &formatted
		}
		for _, k := range matches {
			tr.KaraokeSongs = append(tr.KaraokeSongs, karaokeJSON(k))
		}
		response = append(response, tr)
	}
	return c.JSON(http.StatusOK, response)
}

func karaokeJSON(k *store.KaraokeSong) karaokeResponse {
	return karaokeResponse{
		RequestNo:   k.RequestNo,
		Title:       k.Title,
		ReleaseDate: k.ReleaseDate,
	}
}

func liveEventJSON(ev *store.LiveEvent) liveEventResponse {
	response := liveEventResponse{
		ID:           ev.ID,
		Title:        ev.Title,
		Date:         ev.Date,
		BrandNames:   ev.BrandNames,
		MatchedSongs: ev.MatchedSongs,
		Songs:        make([]setlistEntryJSON, 0, len(ev.Songs)),
	}
	for _, song := range ev.Songs {
		response.Songs = append(response.Songs, setlistEntryJSON{
			Title:     song.Title,
			Artist:    song.Artist,
			RequestNo: song.RequestNo,
		})
	}
	return response
}
