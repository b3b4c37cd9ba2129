package mpris

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/spynners/spynners/internal/playback"
	"github.com/spynners/spynners/internal/track"
)

// coverNames are the artwork files looked for next to a local track, in
// order. Exported beat packs ship artwork.* alongside the audio.
var coverNames = []string{
	"artwork.jpg", "artwork.png", "artwork.jpeg",
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"front.jpg", "front.png",
}

// FindAlbumArt returns the first cover file in the directory of trackPath,
// or "" when there is none.
func FindAlbumArt(trackPath string) string {
	dir := filepath.Dir(trackPath)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// artURL returns the mpris:artUrl for md. Catalog artwork wins; a bare
// local artwork path becomes a file:// URL; otherwise a cover file next to
// a local source is used.
func artURL(md playback.Metadata) string {
	if md.ArtworkURI != "" {
		if p := track.LocalPath(md.ArtworkURI); p != "" {
			return fileURL(p)
		}
		return md.ArtworkURI
	}
	if p := track.LocalPath(md.Source); p != "" {
		if art := FindAlbumArt(p); art != "" {
			return fileURL(art)
		}
	}
	return ""
}

func fileURL(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
