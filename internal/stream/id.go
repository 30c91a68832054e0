package stream

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint derives a stable stream id from a source url and auth token.
// Identical inputs always map to the same id across requests and restarts,
// which is what allows a warm workspace to be picked up again. Distinct
// tokens for the same url get distinct ids. Not a security boundary.
func Fingerprint(sourceURL string, token string) string {
	sum := md5.Sum([]byte(sourceURL + token))
	return hex.EncodeToString(sum[:])
}
