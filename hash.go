// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/viant-linager inspector/graph/hash.go
//

package talkpipe

import "github.com/minio/highwayhash"

// fingerprintKey is a fixed 32-byte key; Fingerprint is used for log
// correlation, not for integrity or security, so a static key is sufficient
// (mirrors the teacher-adjacent viant/linager hashing helper this is
// grounded on).
var fingerprintKey = []byte("talkpipe-fingerprint-key-0123456")

// Fingerprint returns a stable, short hash of data, for correlating
// repeated operations over identical content (e.g. recompiling the same
// ChatterLang script text) without persisting anything. Nothing in this
// module logs it.
func Fingerprint(data []byte) (uint64, error) {
	h, err := highwayhash.New64(fingerprintKey[:32])
	if err != nil {
		return 0, err
	}
	if _, err := h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
