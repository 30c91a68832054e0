package portal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/buger/jsonparser"
)

// EmptyPlaylist is the degraded catalog body served when the portal is
// unreachable or returns garbage.
const EmptyPlaylist = "#EXTM3U\n"

// portals prefix stream commands with a playback mode hint
var autoPrefixRe = regexp.MustCompile(`^auto\s*`)

// PlaylistFromChannels renders a portal channel listing (the raw json body
// of a get_all_channels call) as an extended M3U playlist. The catalog shape
// varies between portal versions, so fields are picked out individually
// instead of being decoded into a struct.
func PlaylistFromChannels(data []byte) string {
	lines := []string{"#EXTM3U"}

	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, _ error) {
		name, err := jsonparser.GetString(value, "name")
		if err != nil || name == "" {
			name = "Unknown Channel"
		}

		logo, _ := jsonparser.GetString(value, "logo")
		genre, _ := jsonparser.GetString(value, "genre_str")

		streamURL, err := jsonparser.GetString(value, "cmds", "[0]", "url")
		if err != nil {
			streamURL, _ = jsonparser.GetString(value, "cmd")
		}
		streamURL = autoPrefixRe.ReplaceAllString(streamURL, "")

		lines = append(lines,
			fmt.Sprintf(`#EXTINF:-1 tvg-id="" tvg-logo="%s" group-title="%s",%s`, logo, genre, name),
			streamURL,
		)
	}, "js", "data")

	if err != nil {
		return EmptyPlaylist
	}

	return strings.Join(lines, "\n")
}
