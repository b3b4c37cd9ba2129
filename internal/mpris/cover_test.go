package mpris

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spynners/spynners/internal/playback"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("fake"), 0o600))
	return path
}

func TestFindAlbumArt(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"none", nil, ""},
		{"cover", []string{"cover.jpg"}, "cover.jpg"},
		{"artwork before cover", []string{"cover.jpg", "artwork.png"}, "artwork.png"},
		{"artwork jpeg", []string{"folder.jpg", "artwork.jpeg"}, "artwork.jpeg"},
		{"cover before folder", []string{"folder.jpg", "cover.png"}, "cover.png"},
		{"unrelated image", []string{"beat.png"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, dir, f)
			}

			got := FindAlbumArt(filepath.Join(dir, "beat.mp3"))

			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, filepath.Join(dir, tt.want), got)
		})
	}
}

func TestFindAlbumArt_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "artwork.jpg"), 0o700))
	cover := touch(t, dir, "cover.jpg")

	assert.Equal(t, cover, FindAlbumArt(filepath.Join(dir, "beat.mp3")))
}

func TestArtURL(t *testing.T) {
	dir := t.TempDir()
	art := touch(t, dir, "artwork.png")
	local := filepath.Join(dir, "a.mp3")

	tests := []struct {
		name string
		md   playback.Metadata
		want string
	}{
		{
			name: "catalog artwork wins over local cover",
			md:   playback.Metadata{ArtworkURI: "https://cdn.test/a.jpg", Source: local},
			want: "https://cdn.test/a.jpg",
		},
		{
			name: "bare artwork path",
			md:   playback.Metadata{ArtworkURI: "/art/vip.png", Source: "https://cdn.test/a.mp3"},
			want: "file:///art/vip.png",
		},
		{
			name: "file artwork kept",
			md:   playback.Metadata{ArtworkURI: "file:///art/vip.png"},
			want: "file:///art/vip.png",
		},
		{
			name: "cover next to file source",
			md:   playback.Metadata{Source: "file://" + local},
			want: "file://" + filepath.ToSlash(art),
		},
		{
			name: "cover next to path source",
			md:   playback.Metadata{Source: local},
			want: "file://" + filepath.ToSlash(art),
		},
		{
			name: "remote source without artwork",
			md:   playback.Metadata{Source: "https://cdn.test/a.mp3"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, artURL(tt.md))
		})
	}
}
