// Package logtail reads the tail of sessiondeck's own JSON log file.
//
// # Overview
//
// The dashboard owns the terminal while it runs, so warnings land in the log
// file instead of on screen. Read pulls the last few entries back out for
// the activity panel.
//
// # Reading
//
//	entries, err := logtail.Read(path, 4, zerolog.WarnLevel)
//
// Read seeks to the final 256 KiB of the file, drops the first partial line
// when it started mid-file, and scans the rest line by line. Entries below
// minLevel are discarded before a ring buffer keeps the newest maxEntries.
// A missing file returns no entries and no error, which is the normal state
// before the first warning is written.
//
// # Entry Format
//
// Parse understands the fields written by the logging package:
//
//	{"level":"warn","component":"api","event":"fetch.failed",
//	 "endpoint":"news","error":"HTTP 502","time":"...","message":"request finished"}
//
// Lines that are not JSON become entries with zerolog.NoLevel and the raw
// line as the message. NoLevel ranks above every real level, so such lines
// always pass the level filter; they usually come from a crash or from
// output written before logging was configured.
//
// # Rendering
//
// Entry.String produces the compact form used by the panel:
//
//	15:04:05 api: request finished [news]: HTTP 502
package logtail
