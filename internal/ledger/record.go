package ledger

import (
	"strconv"
	"strings"

	"github.com/five82/sessiondeck/internal/content"
)

// AssetKind names one of the optional asset URLs on a record.
type AssetKind string

const (
	AssetStreaming AssetKind = "streaming"
	AssetHDVideo   AssetKind = "hd_video"
	AssetSDVideo   AssetKind = "sd_video"
	AssetSlides    AssetKind = "slides"
	AssetWebpage   AssetKind = "webpage"
)

// DefaultEvents is the allow-list used when the config names none: the three
// most recent conferences.
var DefaultEvents = []string{"wwdc2017", "wwdc2016", "wwdc2015"}

// SessionRecord is one ledger row. Identifier is unique across the ledger.
type SessionRecord struct {
	Identifier   string `json:"identifier"`
	Number       string `json:"number"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Track        string `json:"track"`
	Duration     string `json:"duration"`
	StreamingURL string `json:"streaming_url,omitempty"`
	HDVideoURL   string `json:"hd_video_url,omitempty"`
	SDVideoURL   string `json:"sd_video_url,omitempty"`
	SlidesURL    string `json:"slides_url,omitempty"`
	WebpageURL   string `json:"webpage_url,omitempty"`
}

// Assets returns the non-empty asset URLs keyed by kind.
func (r SessionRecord) Assets() map[AssetKind]string {
	out := make(map[AssetKind]string, 5)
	for kind, u := range map[AssetKind]string{
		AssetStreaming: r.StreamingURL,
		AssetHDVideo:   r.HDVideoURL,
		AssetSDVideo:   r.SDVideoURL,
		AssetSlides:    r.SlidesURL,
		AssetWebpage:   r.WebpageURL,
	} {
		if u != "" {
			out[kind] = u
		}
	}
	return out
}

// Project turns a session into a ledger row.
func Project(contents content.Contents, session content.Session) SessionRecord {
	rec := SessionRecord{
		Identifier: session.ID,
		Number:     session.EventContentID,
		Title:      strings.TrimSpace(session.Title),
		Summary:    strings.TrimSpace(session.Description),
		Track:      contents.TrackName(session.TrackID),
		WebpageURL: session.WebPermalink,
	}
	if m := session.Media; m != nil {
		if m.Duration > 0 {
			rec.Duration = strconv.Itoa(m.Duration)
		}
		rec.StreamingURL = m.StreamHLS
		rec.HDVideoURL = m.DownloadHD
		rec.SDVideoURL = m.DownloadSD
		rec.SlidesURL = m.Slides
	}
	return rec
}

// Candidates projects every session of an allowed event, in content order.
// Sessions without an identifier cannot be deduplicated and are skipped.
func Candidates(contents content.Contents, events []string) []SessionRecord {
	allowed := make(map[string]struct{}, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = struct{}{}
	}
	out := make([]SessionRecord, 0, len(contents.Sessions))
	for _, session := range contents.Sessions {
		if _, ok := allowed[session.EventID]; !ok || session.ID == "" {
			continue
		}
		out = append(out, Project(contents, session))
	}
	return out
}
