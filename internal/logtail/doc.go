// Package logtail reads the tail of fractile's log file for the log and
// problems overlays.
//
// # Reading Log Files
//
// Read uses a ring buffer of size maxLines, so only the last maxLines lines
// are kept in memory regardless of file size:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line in file:
//	   - Store line at current index
//	   - Increment index (wrapping at maxLines)
//	   - Track total lines seen
//	3. Return the buffer starting from the oldest line
//
// A non-positive maxLines reads the whole file.
//
// # Problems
//
// fractile logs with log/slog's text handler, so each record carries a
// level=LEVEL attribute. Problems applies the same tail but keeps only WARN
// and ERROR records (re-armed reservations, worker panics).
//
// # Error Handling
//
// Missing files return nil, nil; the log file may not exist until the first
// record is written. Other errors (permission denied, I/O errors) are
// returned wrapped.
package logtail
