package carddav

import (
	"context"
	"sort"

	"github.com/graviox/roundcube-carddav/internal/server/directory"
)

// reconcile applies the remote state to sink: objects with an unchanged
// ETag are skipped, new or changed ones are put and vanished ones removed.
func reconcile(ctx context.Context, sink directory.Sink, remote []directory.Object) error {
	known, err := sink.Known(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(remote))
	for _, obj := range remote {
		seen[obj.Href] = struct{}{}
		if etag, ok := known[obj.Href]; ok && etag != "" && etag == obj.ETag {
			continue
		}
		if err := sink.Put(ctx, obj); err != nil {
			return err
		}
	}

	var gone []string
	for href := range known {
		if _, ok := seen[href]; !ok {
			gone = append(gone, href)
		}
	}
	sort.Strings(gone)

	for _, href := range gone {
		if err := sink.Remove(ctx, href); err != nil {
			return err
		}
	}
	return nil
}
