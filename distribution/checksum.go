package distribution

import (
	"strings"

	"github.com/c360studio/geocrosswalk/record"
)

// ChecksumSentinel marks a checksum that must be computed before the
// metadata can be trusted.
const ChecksumSentinel = "PLACEHOLDER-CHECKSUM-REQUIRED"

// DefaultAlgorithm is used when a source gives a digest without naming its
// algorithm, and for the sentinel.
const DefaultAlgorithm = "sha256"

// Placeholder strings real catalogs ship instead of digests.
var placeholders = []string{
	ChecksumSentinel,
	"placeholder",
	"placeholder_checksum",
	"placeholder_checksum_for_directory",
	"placeholder_hash_for_directory",
	"https://github.com/mlcommons/croissant/issues/80",
	"todo",
	"none",
	"n/a",
}

// IsPlaceholder reports whether v is empty or a known placeholder rather
// than a digest.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	for _, p := range placeholders {
		if strings.EqualFold(v, p) {
			return true
		}
	}
	return false
}

// Unverified returns the sentinel checksum.
func Unverified() record.Checksum {
	return record.Checksum{Algorithm: DefaultAlgorithm, Value: ChecksumSentinel}
}

// multihash prefixes (function code varint + digest length) for the
// digests STAC file:checksum carries.
var multihashPrefixes = []struct {
	prefix    string
	algorithm string
	size      int
}{
	{"1220", "sha256", 64},
	{"1340", "sha512", 128},
	{"1114", "sha1", 40},
	{"d50110", "md5", 32},
}

// ParseMultihash decodes a hex multihash into an algorithm and a hex
// digest.
func ParseMultihash(v string) (algorithm, digest string, ok bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, m := range multihashPrefixes {
		rest, found := strings.CutPrefix(v, m.prefix)
		if found && len(rest) == m.size && isHex(rest) {
			return m.algorithm, rest, true
		}
	}
	return "", "", false
}

// AlgorithmForDigest guesses the algorithm of a bare hex digest from its
// length.
func AlgorithmForDigest(v string) string {
	if !isHex(v) {
		return DefaultAlgorithm
	}
	switch len(v) {
	case 32:
		return "md5"
	case 40:
		return "sha1"
	case 128:
		return "sha512"
	default:
		return DefaultAlgorithm
	}
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}

// Multihash encodes a hex digest as a hex multihash. It reports false for
// algorithms without a known prefix and for digests of the wrong length.
func Multihash(algorithm, digest string) (string, bool) {
	digest = strings.ToLower(strings.TrimSpace(digest))
	for _, m := range multihashPrefixes {
		if m.algorithm == strings.ToLower(algorithm) && len(digest) == m.size && isHex(digest) {
			return m.prefix + digest, true
		}
	}
	return "", false
}
