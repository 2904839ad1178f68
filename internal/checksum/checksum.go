// Package checksum computes content digests used for change detection.
package checksum

import (
	"crypto/md5"
	"encoding/hex"
)

// PreviewLimit is the number of preview characters that take part in a fingerprint.
const PreviewLimit = 500

const fingerprintLen = 8

// Fingerprint returns a short change token for a note. Only the first
// PreviewLimit characters (runes) of preview are considered; edits beyond that
// offset do not change the result.
//
// The digest is MD5 so manifests written by earlier versions of the site
// generator keep matching.
func Fingerprint(title, preview string) string {
	sum := md5.Sum([]byte(title + truncateRunes(preview, PreviewLimit)))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// ETag returns the hex-encoded MD5 digest of data, the form S3 reports for
// single-part uploads.
func ETag(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
