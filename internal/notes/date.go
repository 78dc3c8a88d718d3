package notes

import (
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// DateLayout is the meeting date format used in file names and documents.
const DateLayout = "2006-01-02"

var dateInName = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// ResolveDate picks the meeting date: an explicit override, then a
// YYYY-MM-DD in the directory name, then the newest file modification time in
// the directory, then now. An override that does not parse is ignored.
func ResolveDate(override, dir string, now time.Time) time.Time {
	if override != "" {
		if d, err := time.ParseInLocation(DateLayout, override, time.Local); err == nil {
			return d
		}
		logger.WithField("date", override).Warn("Ignoring unparseable meeting date")
	}

	if m := dateInName.FindString(filepath.Base(filepath.Clean(dir))); m != "" {
		if d, err := time.ParseInLocation(DateLayout, m, time.Local); err == nil {
			return d
		}
	}

	if latest, ok := newestModTime(dir); ok {
		return latest
	}
	return now
}

func newestModTime(dir string) (time.Time, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, false
	}
	var latest time.Time
	found := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !found || info.ModTime().After(latest) {
			latest = info.ModTime()
			found = true
		}
	}
	return latest, found
}
