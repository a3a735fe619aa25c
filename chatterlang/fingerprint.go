// SPDX-License-Identifier: GPL-3.0-or-later

package chatterlang

import "github.com/sandialabs/talkpipe-go"

// Fingerprint returns a stable hash of a script's source text, after
// comment-stripping, so two scripts differing only in comments hash
// identically. Useful for cache keys over compiled scripts.
func Fingerprint(src string) (uint64, error) {
	stripped, err := stripComments(src)
	if err != nil {
		return 0, err
	}
	return talkpipe.Fingerprint([]byte(stripped))
}
