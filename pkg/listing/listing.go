package listing

import (
	"sort"
	"strconv"
	"strings"
)

// ParentName is the synthetic entry callers place at index 0 of a listing.
const ParentName = ".."

// Entry represents one item of a directory listing.
type Entry struct {
	Name  string
	Size  int64
	IsDir bool
	Perms string // raw permission string, remote listings only
}

// Parent returns the synthetic ".." entry.
func Parent() Entry {
	return Entry{Name: ParentName, IsDir: true}
}

// ParseLine parses one long-format LIST line, e.g.
//
//	drwxr-xr-x 2 user group 4096 Jan 1 00:00 alpha
//
// Only fields 0 (permissions), 4 (size) and 8 (name) are interpreted. The
// name field is everything from the 9th token onward, so names containing
// spaces survive intact. Lines with fewer than 9 fields are rejected.
func ParseLine(line string) (Entry, bool) {
	parts := strings.Fields(line)
	if len(parts) < 9 {
		return Entry{}, false
	}

	// Re-split with a field limit so the tail keeps its embedded spaces.
	parts = splitN(line, 9)

	size, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		size = 0
	}

	return Entry{
		Name:  parts[8],
		Size:  size,
		IsDir: strings.HasPrefix(parts[0], "d"),
		Perms: parts[0],
	}, true
}

// splitN splits on runs of whitespace into at most n fields, the last field
// holding the untouched remainder of the line.
func splitN(line string, n int) []string {
	fields := make([]string, 0, n)
	rest := strings.TrimLeft(line, " \t")
	for len(fields) < n-1 && rest != "" {
		i := strings.IndexAny(rest, " \t")
		if i < 0 {
			break
		}
		fields = append(fields, rest[:i])
		rest = strings.TrimLeft(rest[i:], " \t")
	}
	fields = append(fields, rest)
	return fields
}

// Sort orders entries in place: directories before files, then
// case-insensitive by name. A synthetic ".." at index 0 stays first;
// callers that prepend it should sort the tail only, which Sort handles.
func Sort(entries []Entry) {
	tail := entries
	if len(entries) > 0 && entries[0].Name == ParentName {
		tail = entries[1:]
	}
	sort.SliceStable(tail, func(i, j int) bool {
		if tail[i].IsDir != tail[j].IsDir {
			return tail[i].IsDir
		}
		return strings.ToLower(tail[i].Name) < strings.ToLower(tail[j].Name)
	})
}

// Search returns the indices of entries whose name contains query,
// case-insensitively. The synthetic ".." never matches.
func Search(entries []Entry, query string) []int {
	query = strings.ToLower(query)
	var matches []int
	for i, e := range entries {
		if e.Name == ParentName {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), query) {
			matches = append(matches, i)
		}
	}
	return matches
}

// FormatSize renders a byte count in a human unit, capping at TB so any
// parseable size has a rendering.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return strconv.FormatInt(size, 10) + " B"
	}
	units := []string{"KB", "MB", "GB", "TB"}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit && exp < len(units)-1; n /= unit {
		div *= unit
		exp++
	}
	value := float64(size) / float64(div)
	return strconv.FormatFloat(value, 'f', 1, 64) + " " + units[exp]
}
