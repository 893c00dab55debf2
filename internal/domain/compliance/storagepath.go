package compliance

import (
	"net/url"
	"strings"
)

// DefaultBuckets are the bucket names uploads have historically been stored under.
var DefaultBuckets = []string{"employee-documents", "requirements", "documents"}

var objectPrefixes = []string{
	"/storage/v1/object/public/",
	"/storage/v1/object/sign/",
	"/storage/v1/object/authenticated/",
	"/storage/v1/object/",
}

// PathNormalizer canonicalizes stored file references (bare keys,
// bucket-qualified keys or public URLs) into comparable object keys.
type PathNormalizer struct {
	Buckets []string
}

func NewPathNormalizer(buckets ...string) PathNormalizer {
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}
	cleaned := make([]string, 0, len(buckets))
	for _, b := range buckets {
		if b = strings.Trim(strings.TrimSpace(b), "/"); b != "" {
			cleaned = append(cleaned, b)
		}
	}
	return PathNormalizer{Buckets: cleaned}
}

// Normalize returns the object key for raw, or false when nothing is stored.
func (p PathNormalizer) Normalize(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if i := strings.IndexAny(value, "?#"); i >= 0 {
		value = value[:i]
	}
	if value == "" {
		return "", false
	}

	if strings.Contains(value, "://") {
		value = p.stripURL(value)
	}

	value = strings.TrimLeft(value, "/")
	value = p.stripBucket(value)

	if decoded, err := url.PathUnescape(value); err == nil {
		value = decoded
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// SameFile reports whether a and b name the same stored object. Two absent
// references are never the same file.
func (p PathNormalizer) SameFile(a, b string) bool {
	left, ok := p.Normalize(a)
	if !ok {
		return false
	}
	right, ok := p.Normalize(b)
	if !ok {
		return false
	}
	return left == right
}

func (p PathNormalizer) stripURL(raw string) string {
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		path = u.EscapedPath()
	} else if i := strings.Index(raw, "://"); i >= 0 {
		rest := raw[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			path = rest[j:]
		} else {
			path = ""
		}
	}

	for _, prefix := range objectPrefixes {
		if i := strings.Index(path, prefix); i >= 0 {
			rest := path[i+len(prefix):]
			if j := strings.Index(rest, "/"); j >= 0 {
				return rest[j+1:]
			}
			return ""
		}
	}
	for _, bucket := range p.Buckets {
		marker := "/" + bucket + "/"
		if i := strings.Index(path, marker); i >= 0 {
			return path[i+len(marker):]
		}
	}
	return path
}

func (p PathNormalizer) stripBucket(value string) string {
	for _, bucket := range p.Buckets {
		if value == bucket {
			return ""
		}
		if strings.HasPrefix(value, bucket+"/") {
			return strings.TrimLeft(value[len(bucket)+1:], "/")
		}
	}
	return value
}
