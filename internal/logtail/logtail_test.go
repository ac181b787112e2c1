package logtail

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/five82/sessiondeck/internal/logging"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessiondeck.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func messages(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func TestReadKeepsNewestEntries(t *testing.T) {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf(`{"level":"info","message":"line %d"}`, i))
	}
	path := writeLog(t, lines...)

	tests := []struct {
		name string
		max  int
		want []string
	}{
		{"none", 0, nil},
		{"partial", 3, []string{"line 8", "line 9", "line 10"}},
		{"more than exists", 20, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(path, tt.max, zerolog.DebugLevel)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			want := tt.want
			if tt.max == 20 {
				want = nil
				for i := 1; i <= 10; i++ {
					want = append(want, fmt.Sprintf("line %d", i))
				}
			}
			if fmt.Sprint(messages(got)) != fmt.Sprint(want) {
				t.Fatalf("Read = %v, want %v", messages(got), want)
			}
		})
	}
}

func TestReadFiltersByLevel(t *testing.T) {
	path := writeLog(t,
		`{"level":"debug","message":"quiet"}`,
		`{"level":"warn","component":"poller","endpoint":"news","error":"boom","message":"poll failed"}`,
		`not json at all`,
		``,
		`{"level":"error","message":"bad"}`,
	)

	got, err := Read(path, 10, zerolog.WarnLevel)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if fmt.Sprint(messages(got)) != "[poll failed not json at all bad]" {
		t.Fatalf("Read = %v", messages(got))
	}
	if got[0].Component != "poller" || got[0].Endpoint != "news" || got[0].Err != "boom" {
		t.Fatalf("entry = %+v", got[0])
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 5, zerolog.DebugLevel)
	if err != nil || got != nil {
		t.Fatalf("Read = %v, %v; want nil, nil", got, err)
	}
}

func TestReadLargeFileScansTail(t *testing.T) {
	var b strings.Builder
	for i := 0; b.Len() < 2*tailWindow; i++ {
		fmt.Fprintf(&b, `{"level":"info","message":"line %d"}`+"\n", i)
	}
	b.WriteString(`{"level":"warn","message":"last"}` + "\n")
	path := filepath.Join(t.TempDir(), "big.log")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Read(path, 2, zerolog.DebugLevel)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 2 || got[1].Message != "last" || got[0].Level != zerolog.InfoLevel {
		t.Fatalf("Read = %+v", got)
	}
}

func TestParseRoundTripsZerologOutput(t *testing.T) {
	var buf bytes.Buffer
	logging.Configure(logging.Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { logging.Configure(logging.Config{}) })

	log := logging.WithComponent("api")
	log.Warn().
		Str(logging.FieldEndpoint, "contents").
		Str(logging.FieldEvent, "fetch.failed").
		Msg("request finished")

	entry := Parse(bytes.TrimSpace(buf.Bytes()))
	if entry.Level != zerolog.WarnLevel || entry.Component != "api" || entry.Event != "fetch.failed" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.Time.IsZero() {
		t.Fatal("timestamp not parsed")
	}
	if s := entry.String(); !strings.Contains(s, "api: request finished [contents]") {
		t.Fatalf("String = %q", s)
	}
}

func TestParsePlainLine(t *testing.T) {
	entry := Parse([]byte("panic: oops"))
	if entry.Level != zerolog.NoLevel || entry.Message != "panic: oops" || entry.String() != "panic: oops" {
		t.Fatalf("entry = %+v", entry)
	}
}
