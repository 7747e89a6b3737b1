// Package channel resolves the logical ChannelURI identifier
// ("scheme://collection/experiment/channel") into the path component used
// for on-disk and object-store block keys.
package channel

import "strings"

// Path strips any "scheme://" prefix from a channel URI and returns the
// remainder, which becomes part of a block's on-disk or S3 key:
// "<cacheRoot>/<channel-path>/<resolution>/x<Ix>_y<Iy>_z<Iz>".
func Path(uri string) string {
	if idx := strings.Index(uri, "://"); idx >= 0 {
		return uri[idx+3:]
	}
	return uri
}
