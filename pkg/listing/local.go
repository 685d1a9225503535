package listing

import "os"

// ReadLocal reads a local directory into sorted entries, without the
// synthetic parent. Sizes of unreadable files fall back to zero so one bad
// entry cannot fail the whole listing.
func ReadLocal(dir string) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var size int64
		if info, err := item.Info(); err == nil && !item.IsDir() {
			size = info.Size()
		}
		entries = append(entries, Entry{
			Name:  item.Name(),
			Size:  size,
			IsDir: item.IsDir(),
		})
	}
	Sort(entries)
	return entries, nil
}
