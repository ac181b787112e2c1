package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/sessiondeck/internal/logging"
)

// tailWindow bounds how much of a large log file is scanned.
const tailWindow = 256 << 10

// Entry is one line of the application log.
type Entry struct {
	Time      time.Time
	Level     zerolog.Level
	Component string
	Event     string
	Endpoint  string
	Message   string
	Err       string
}

// Read returns at most maxEntries from the end of the log at path, oldest
// first, keeping only entries at minLevel or above. Lines that are not
// JSON, such as panic output, carry no level and are always kept. A missing
// file yields no entries.
func Read(path string, maxEntries int, minLevel zerolog.Level) ([]Entry, error) {
	if maxEntries <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}
	skipPartial := false
	if info.Size() > tailWindow {
		if _, err := file.Seek(-tailWindow, io.SeekEnd); err != nil {
			return nil, fmt.Errorf("seek log: %w", err)
		}
		skipPartial = true
	}

	ring := make([]Entry, maxEntries)
	count, idx := 0, 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if skipPartial {
			skipPartial = false
			continue
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		entry := Parse(line)
		if entry.Level < minLevel {
			continue
		}
		ring[idx] = entry
		idx = (idx + 1) % maxEntries
		if count < maxEntries {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	entries := make([]Entry, count)
	if count == maxEntries {
		for i := 0; i < count; i++ {
			entries[i] = ring[(idx+i)%maxEntries]
		}
	} else {
		copy(entries, ring[:count])
	}
	return entries, nil
}

// Parse decodes one zerolog JSON line. Anything else becomes a message with
// no level.
func Parse(line []byte) Entry {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return Entry{Level: zerolog.NoLevel, Message: string(line)}
	}
	entry := Entry{
		Level:     zerolog.NoLevel,
		Component: stringField(raw, logging.FieldComponent),
		Event:     stringField(raw, logging.FieldEvent),
		Endpoint:  stringField(raw, logging.FieldEndpoint),
		Message:   stringField(raw, zerolog.MessageFieldName),
		Err:       stringField(raw, zerolog.ErrorFieldName),
	}
	if lvl, err := zerolog.ParseLevel(stringField(raw, zerolog.LevelFieldName)); err == nil {
		entry.Level = lvl
	}
	if ts, err := time.Parse(time.RFC3339, stringField(raw, zerolog.TimestampFieldName)); err == nil {
		entry.Time = ts
	}
	return entry
}

// String renders the entry on one line.
func (e Entry) String() string {
	out := e.Message
	if e.Component != "" {
		out = e.Component + ": " + out
	}
	if e.Endpoint != "" {
		out += " [" + e.Endpoint + "]"
	}
	if e.Err != "" {
		out += ": " + e.Err
	}
	if !e.Time.IsZero() {
		out = e.Time.Local().Format("15:04:05") + " " + out
	}
	return out
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}
