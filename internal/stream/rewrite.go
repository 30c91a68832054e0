package stream

import (
	"net/url"
	"regexp"
	"strings"
)

const segmentRoute = "/segment/"

var localSegmentRe = regexp.MustCompile(`segment_\d+\.ts`)

// RewriteRemote rewrites a fetched playlist so each media line points back at
// the gateway's segment endpoint. Comment lines pass through untouched;
// every other non-empty line is treated as a segment reference, resolved
// against the playlist url when relative, and replaced with a reference
// carrying the stream id and portal context needed to fetch it later. An
// empty publicBase emits gateway-relative references.
func RewriteRemote(playlist string, base *url.URL, publicBase string, streamID string, req PlaybackRequest) string {
	lines := strings.Split(playlist, "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		abs, err := base.Parse(line)
		if err != nil {
			// unresolvable reference, leave it to the client
			continue
		}

		values := url.Values{}
		values.Set("url", abs.String())
		if req.Portal != "" {
			values.Set("portal", req.Portal)
		}
		if req.MAC != "" {
			values.Set("mac", req.MAC)
		}
		if req.Token != "" {
			values.Set("token", req.Token)
		}

		lines[i] = publicBase + segmentRoute + streamID + "?" + values.Encode()
	}

	return strings.Join(lines, "\n")
}

// RewriteLocal replaces transcoder-produced segment filenames in a workspace
// playlist with gateway segment references. No base resolution is needed,
// these are always files next to the playlist.
func RewriteLocal(playlist string, publicBase string, streamID string) string {
	return localSegmentRe.ReplaceAllStringFunc(playlist, func(name string) string {
		values := url.Values{}
		values.Set("file", name)

		return publicBase + segmentRoute + streamID + "?" + values.Encode()
	})
}
