package portal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaylistFromChannels(t *testing.T) {
	t.Run("renders catalog entries", func(t *testing.T) {
		data := []byte(`{
			"js": {
				"data": [
					{
						"name": "News One",
						"logo": "http://logos/1.png",
						"genre_str": "News",
						"cmds": [{"url": "auto http://source/1.ts"}]
					},
					{
						"name": "Movies",
						"cmd": "http://source/2.ts"
					},
					{
						"cmd": "auto    http://source/3.ts"
					}
				]
			}
		}`)

		got := PlaylistFromChannels(data)
		lines := strings.Split(got, "\n")

		assert.Equal(t, "#EXTM3U", lines[0])
		assert.Equal(t, `#EXTINF:-1 tvg-id="" tvg-logo="http://logos/1.png" group-title="News",News One`, lines[1])
		assert.Equal(t, "http://source/1.ts", lines[2], "auto prefix must be stripped")
		assert.Equal(t, `#EXTINF:-1 tvg-id="" tvg-logo="" group-title="",Movies`, lines[3])
		assert.Equal(t, "http://source/2.ts", lines[4])
		assert.Equal(t, `#EXTINF:-1 tvg-id="" tvg-logo="" group-title="",Unknown Channel`, lines[5])
		assert.Equal(t, "http://source/3.ts", lines[6])
	})

	t.Run("garbage degrades to an empty playlist", func(t *testing.T) {
		assert.Equal(t, EmptyPlaylist, PlaylistFromChannels([]byte("not json")))
		assert.Equal(t, EmptyPlaylist, PlaylistFromChannels([]byte(`{"js":{}}`)))
	})

	t.Run("empty catalog keeps the header", func(t *testing.T) {
		assert.Equal(t, "#EXTM3U", PlaylistFromChannels([]byte(`{"js":{"data":[]}}`)))
	})
}
