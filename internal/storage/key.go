package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

const maxKeyBase = 50

var (
	keyDisallowed = regexp.MustCompile(`[^a-z0-9\-_. ]`)
	keySpaces     = regexp.MustCompile(`\s+`)
	keyHyphens    = regexp.MustCompile(`-+`)
)

// ObjectKey derives a collision resistant key from a display filename:
// <prefix>/<clean base>-<unix ms><ext>. fallback replaces a base that
// cleans down to nothing. It returns the key and the stored file name.
func ObjectKey(prefix, filename, fallback string, now time.Time) (key, stored string) {
	ext := path.Ext(filename)
	if ext == filename {
		// dotfile, no extension
		ext = ""
	}
	base := strings.TrimSuffix(filename, ext)
	base = strings.ToLower(base)
	base = keyDisallowed.ReplaceAllString(base, "")
	base = keySpaces.ReplaceAllString(base, "-")
	base = keyHyphens.ReplaceAllString(base, "-")
	if len(base) > maxKeyBase {
		base = base[:maxKeyBase]
	}
	if base == "" {
		base = fallback
	}

	stored = fmt.Sprintf("%s-%d%s", base, now.UnixMilli(), ext)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return stored, stored
	}
	return prefix + "/" + stored, stored
}

// supabasePublicURL is the public object URL of the managed storage.
func supabasePublicURL(base, bucket, key string) string {
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", strings.TrimRight(base, "/"), bucket, key)
}
