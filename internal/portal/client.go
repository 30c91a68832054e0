package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const retryAttempts = 3

const retryDelay = 500 * time.Millisecond

// ClientCtx talks to the upstream portal api on behalf of the gateway. The
// stream core only consumes its output when deciding relay-vs-transcode; it
// never participates in the handshake itself.
type ClientCtx struct {
	logger zerolog.Logger
	http   *http.Client
}

func NewClient(timeout time.Duration) *ClientCtx {
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &ClientCtx{
		logger: log.With().Str("module", "portal").Logger(),
		http:   &http.Client{Timeout: timeout},
	}
}

// Handshake performs the stb authentication handshake and returns the portal
// response as-is.
func (c *ClientCtx) Handshake(ctx context.Context, portal string, mac string) ([]byte, error) {
	target := endpoint(portal) + "?type=stb&action=handshake&JsHttpRequest=1-xml"
	return c.get(ctx, target, DeviceHeaders(mac, portal+"/c/", ""))
}

// Channels fetches the full channel catalog for an authenticated device.
func (c *ClientCtx) Channels(ctx context.Context, portal string, mac string, token string) ([]byte, error) {
	target := endpoint(portal) + "?type=itv&action=get_all_channels&JsHttpRequest=1-xml"
	return c.get(ctx, target, DeviceHeaders(mac, portal+"/c/", token))
}

func endpoint(portal string) string {
	return strings.TrimSuffix(portal, "/") + "/portal.php"
}

// get fetches with a few retries, portals routinely drop the first request
// from a new connection.
func (c *ClientCtx) get(ctx context.Context, target string, headers http.Header) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header = headers

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return fmt.Errorf("portal returned %d", resp.StatusCode)
			}

			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
	)

	if err != nil {
		c.logger.Warn().Err(err).Str("url", target).Msg("portal request failed")
		return nil, err
	}

	return body, nil
}
