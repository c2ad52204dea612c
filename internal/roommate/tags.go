// internal/roommate/tags.go
// Interest and lifestyle tags are persisted as JSON arrays of strings.

package roommate

import (
	"database/sql/driver"
	"encoding/json"
	"log"
	"strings"
)

// Tags is an ordered list of free-text labels.
type Tags []string

// ParseTags decodes a JSON array of strings. Anything that does not decode
// yields an empty list.
func ParseTags(raw string) Tags {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return Tags{}
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		log.Printf("roommate: malformed tag data treated as empty: %v", err)
		return Tags{}
	}
	return Tags(tags)
}

// Set returns the distinct non-blank tags.
func (t Tags) Set() map[string]struct{} {
	set := make(map[string]struct{}, len(t))
	for _, tag := range t {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		set[tag] = struct{}{}
	}
	return set
}

// Scan implements sql.Scanner. Malformed column data becomes an empty list
// instead of failing the row.
func (t *Tags) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = Tags{}
	case []byte:
		*t = ParseTags(string(v))
	case string:
		*t = ParseTags(v)
	default:
		log.Printf("roommate: unexpected tag column type %T treated as empty", value)
		*t = Tags{}
	}
	return nil
}

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
