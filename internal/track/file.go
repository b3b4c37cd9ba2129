package track

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// FromFile builds an item for a local audio file using its embedded tags.
// Files without readable tags still produce an item titled after the file name.
func FromFile(path string) (Item, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Item{}, err
	}
	if _, err := os.Stat(abs); err != nil {
		return Item{}, err
	}

	item := Item{
		ID:             fileID(abs),
		Title:          strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		AudioSourceURI: abs,
	}

	f, err := os.Open(abs)
	if err != nil {
		return Item{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// Untagged files are still playable.
		return item, nil //nolint:nilerr // tags are optional
	}
	if t := strings.TrimSpace(m.Title()); t != "" {
		item.Title = t
	}
	item.Artist = m.Artist()
	if item.Artist == "" {
		item.Artist = m.AlbumArtist()
	}
	item.Genre = m.Genre()
	return item, nil
}

// fileID derives a stable identifier from an absolute path.
func fileID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("file:%x", h.Sum64())
}

// IsLocal reports whether the item's audio source is a local file.
func (i Item) IsLocal() bool {
	return LocalPath(i.AudioSourceURI) != ""
}

// LocalPath returns the filesystem path for local sources, or "".
func LocalPath(uri string) string {
	switch {
	case strings.HasPrefix(uri, "file://"):
		return strings.TrimPrefix(uri, "file://")
	case strings.HasPrefix(uri, "/"), filepath.IsAbs(uri):
		return uri
	default:
		return ""
	}
}
