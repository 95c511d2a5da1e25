// Package capture lists screenshot files and segments them into sessions and
// windows. Segmentation is pure and deterministic: the only I/O is the
// directory listing and stat calls in List.
package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// File is one capture on disk, ordered by filesystem modification time.
type File struct {
	Name    string
	Path    string
	ModTime time.Time
}

// Session is a maximal run of files whose consecutive mtimes are closer than
// the session gap.
type Session struct {
	Files []File
}

// Window is a bounded sub-sequence of a session's files, sized to fit one
// vision-model call.
type Window struct {
	Files []File
	Start time.Time
	End   time.Time
}

// TimeRange renders the window's span the way traces present it to the model.
func (w Window) TimeRange() string {
	return fmt.Sprintf("%s - %s", w.Start.Format("3:04:05 PM"), w.End.Format("3:04:05 PM"))
}

// List returns the directory's .jpg captures sorted by modification time,
// oldest first.
func List(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read capture dir: %w", err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jpg") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, File{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// GroupByDay partitions files by the date component of their mtime. Keys are
// "2006-01-02"; Days returns them in chronological order.
func GroupByDay(files []File) map[string][]File {
	days := make(map[string][]File)
	for _, f := range files {
		key := f.ModTime.Format("2006-01-02")
		days[key] = append(days[key], f)
	}
	return days
}

// Days returns the day keys of a grouped file set in chronological order.
func Days(grouped map[string][]File) []string {
	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Segment walks time-sorted files and splits them into sessions wherever the
// gap between consecutive mtimes reaches sessionGap. An empty day yields no
// sessions rather than touching a timestamp that does not exist.
func Segment(files []File, sessionGap time.Duration) []Session {
	if len(files) == 0 {
		return nil
	}

	var sessions []Session
	var current []File
	last := files[0].ModTime

	for _, f := range files {
		if f.ModTime.Sub(last) < sessionGap {
			current = append(current, f)
		} else {
			sessions = append(sessions, Session{Files: current})
			current = []File{f}
		}
		last = f.ModTime
	}
	if len(current) > 0 {
		sessions = append(sessions, Session{Files: current})
	}

	return sessions
}

// Windows partitions a session into consecutive windows of up to size files;
// only the final window may be shorter.
func Windows(s Session, size int) []Window {
	if size <= 0 || len(s.Files) == 0 {
		return nil
	}

	var windows []Window
	for start := 0; start < len(s.Files); start += size {
		end := start + size
		if end > len(s.Files) {
			end = len(s.Files)
		}
		w := Window{
			Files: s.Files[start:end],
			Start: s.Files[start].ModTime,
			End:   s.Files[end-1].ModTime,
		}
		windows = append(windows, w)
	}
	return windows
}

// DayWindows segments one day's files and flattens the per-session windows in
// order.
func DayWindows(files []File, sessionGap time.Duration, windowSize int) []Window {
	var windows []Window
	for _, s := range Segment(files, sessionGap) {
		windows = append(windows, Windows(s, windowSize)...)
	}
	return windows
}
