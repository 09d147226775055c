package cache

import (
	"crypto/md5"
	"fmt"
	"strings"
	"unicode"
)

// Key builds the conventional "<namespace>_<id>" cache key. Runs of
// whitespace in id collapse to a single underscore, so "New  Zealand"
// and "New Zealand" share an entry.
func Key(namespace, id string) string {
	fields := strings.FieldsFunc(id, unicode.IsSpace)
	return namespace + "_" + strings.Join(fields, "_")
}

// KeyParts builds a key from a namespace and several identifiers, e.g. a
// party name and its country.
func KeyParts(namespace string, ids ...string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strings.Join(strings.FieldsFunc(id, unicode.IsSpace), "_"))
	}
	return namespace + "_" + strings.Join(parts, "__")
}

// FileName makes a key safe for use as a filename
func FileName(key string) string {
	// For very long keys, use hash to avoid filesystem limits
	if len(key) > 200 {
		hash := md5.Sum([]byte(key))
		return fmt.Sprintf("hash_%x.json", hash)
	}

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"?", "_",
		"&", "_",
		"=", "_",
		"#", "_",
		"<", "_",
		">", "_",
		"|", "_",
		"*", "_",
		"\"", "_",
		" ", "_",
	)
	return replacer.Replace(key) + ".json"
}
