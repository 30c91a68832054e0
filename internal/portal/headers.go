package portal

import (
	"fmt"
	"net/http"
)

const magUserAgent = "Mozilla/5.0 (QtEmbedded; U; Linux; C) AppleWebKit/533.3 (KHTML, like Gecko) MAG200 stbapp ver: 6 rev: 1a90f4f Mobile Safari/533.3"

// DeviceHeaders builds the header set a stalker-style portal expects from a
// MAG set-top box. The portal rejects anything that does not look like an
// stb, so every upstream call carries these.
func DeviceHeaders(mac string, referer string, token string) http.Header {
	cookie := fmt.Sprintf("mac=%s; stb_lang=en; timezone=Europe%%2FLondon", mac)
	if token != "" {
		cookie += "; token=" + token
	}

	h := http.Header{}
	h.Set("User-Agent", magUserAgent)
	h.Set("X-User-Agent", "Model: MAG250; Link: Ethernet")
	h.Set("Referer", referer)
	h.Set("Accept", "application/json")
	h.Set("Cookie", cookie)
	return h
}
