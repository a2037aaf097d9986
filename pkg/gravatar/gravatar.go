// Package gravatar derives avatar URLs from email addresses.
package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

const baseURL = "//www.gravatar.com/avatar/"

// URL returns the protocol-relative Gravatar URL for email: 200px, rated pg,
// falling back to the "mystery man" silhouette.
func URL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	q := url.Values{}
	q.Set("s", "200")
	q.Set("r", "pg")
	q.Set("d", "mm")
	return baseURL + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
