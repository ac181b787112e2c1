package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayout is the wire format for every timestamp the schedule API emits.
// The offset carries no colon, which time.RFC3339 rejects.
const timestampLayout = "2006-01-02T15:04:05Z0700"

// Time decodes timestamps in the schedule API's format. RFC 3339 values are
// accepted too.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler using the wire layout.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(timestampLayout))
}

// ParseTime parses a timestamp string in the API layout.
func ParseTime(value string) (time.Time, error) {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q does not match %s", value, timestampLayout)
}

// NewsItem is one entry of the news feed.
type NewsItem struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Date  Time   `json:"date"`
}

// FeaturedSection groups curated content on the featured tab.
type FeaturedSection struct {
	Ordinal     int               `json:"ordinal"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Content     []FeaturedContent `json:"content"`
}

// FeaturedContent references a session by id.
type FeaturedContent struct {
	ContentID string `json:"contentId"`
	Essay     string `json:"essay"`
}

// Contents is the schedule payload: events, tracks and every session.
type Contents struct {
	Events   []Event   `json:"events"`
	Tracks   []Track   `json:"tracks"`
	Rooms    []Room    `json:"rooms"`
	Sessions []Session `json:"contents"`
}

// Event is a conference edition.
type Event struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartTime Time   `json:"startTime"`
	EndTime   Time   `json:"endTime"`
}

// Track categorises sessions.
type Track struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Room is a venue inside an event.
type Room struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Session is a talk, lab or activity in the schedule.
type Session struct {
	ID             string `json:"id"`
	EventID        string `json:"eventId"`
	EventContentID string `json:"eventContentId"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	TrackID        int    `json:"track"`
	RoomID         int    `json:"room"`
	WebPermalink   string `json:"webPermalink"`
	StartTime      Time   `json:"startTime"`
	EndTime        Time   `json:"endTime"`
	Media          *Media `json:"media"`
}

// Media lists downloadable assets for a session.
type Media struct {
	Duration   int    `json:"duration"`
	StreamHLS  string `json:"streamHLS"`
	DownloadHD string `json:"downloadHD"`
	DownloadSD string `json:"downloadSD"`
	Slides     string `json:"slides"`
}

// TrackName returns the name of the track with id, or "" when unknown.
func (c Contents) TrackName(id int) string {
	for _, track := range c.Tracks {
		if track.ID == id {
			return track.Name
		}
	}
	return ""
}

// VideoCatalog is the sessions/videos payload.
type VideoCatalog struct {
	Updated  Time           `json:"updated"`
	Sessions []SessionVideo `json:"sessions"`
}

// SessionVideo is a recorded session.
type SessionVideo struct {
	ID        string `json:"id"`
	Year      int    `json:"year"`
	Title     string `json:"title"`
	Track     string `json:"track"`
	Duration  int    `json:"duration"`
	StreamURL string `json:"url"`
	HDURL     string `json:"download_hd"`
	SDURL     string `json:"download_sd"`
	Date      Time   `json:"date"`
}

// LiveAsset describes the live stream for a session currently on air.
type LiveAsset struct {
	SessionID string `json:"sessionId"`
	StreamURL string `json:"hls"`
	StartsAt  Time   `json:"actualStartDate"`
}

// LiveAssets maps session ids to their live stream.
type LiveAssets map[string]LiveAsset
