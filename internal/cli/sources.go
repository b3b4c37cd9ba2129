package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/samber/lo"

	"github.com/spynners/spynners/internal/track"
)

// loadItems turns command arguments into a queue. A single .json argument
// (path or URL) is read as a catalog; anything else is one item per
// argument: local audio files or remote URIs.
func loadItems(ctx context.Context, client *http.Client, args []string) ([]track.Item, error) {
	if len(args) == 1 && isCatalog(args[0]) {
		return loadCatalog(ctx, client, args[0])
	}

	items := make([]track.Item, 0, len(args))
	for _, arg := range args {
		item, err := itemFromArg(arg)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func isCatalog(arg string) bool {
	p := arg
	if u, err := url.Parse(arg); err == nil && u.Scheme != "" {
		p = u.Path
	}
	return strings.EqualFold(path.Ext(p), ".json")
}

func isRemote(arg string) bool {
	return strings.HasPrefix(arg, "http://") ||
		strings.HasPrefix(arg, "https://") ||
		strings.HasPrefix(arg, "data:")
}

func itemFromArg(arg string) (track.Item, error) {
	if !isRemote(arg) {
		item, err := track.FromFile(strings.TrimPrefix(arg, "file://"))
		if err != nil {
			return track.Item{}, fmt.Errorf("open %s: %w", arg, err)
		}
		return item, nil
	}

	title := arg
	if u, err := url.Parse(arg); err == nil && u.Path != "" && u.Scheme != "data" {
		title = strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
	}
	if strings.HasPrefix(arg, "data:") {
		title = "Inline audio"
	}
	return track.Item{ID: arg, Title: title, AudioSourceURI: arg}, nil
}

func loadCatalog(ctx context.Context, client *http.Client, src string) ([]track.Item, error) {
	r, err := openCatalog(ctx, client, src)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	items, err := track.DecodeCatalog(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return items, nil
}

func openCatalog(ctx context.Context, client *http.Client, src string) (io.ReadCloser, error) {
	if !isRemote(src) {
		return os.Open(src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", src, resp.Status)
	}
	return resp.Body, nil
}

// startIndex picks the first item to play: the one with id when given,
// else the first playable one.
func startIndex(items []track.Item, id string) (int, error) {
	if id != "" {
		idx := track.IndexOf(items, id)
		if idx < 0 {
			return -1, fmt.Errorf("no track with id %q", id)
		}
		return idx, nil
	}
	_, idx, ok := lo.FindIndexOf(items, track.Item.IsPlayable)
	if !ok {
		return 0, nil
	}
	return idx, nil
}
