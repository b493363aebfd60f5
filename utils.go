package admindata

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// API paths, relative to the API root.
const (
	TypesPath    = "/data/types"
	EntitiesPath = "/data/entities"
	ReorderPath  = "/data/entities/reorder"
)

func JsonPrint(tag string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%s: error marshaling: %v\n", tag, err)
		return
	}
	fmt.Printf("%s: %s\n", tag, string(b))
}

// TypePath addresses one type by id or slug.
func TypePath(idOrSlug string) string {
	return TypesPath + "/" + url.PathEscape(idOrSlug)
}

// TypeEntitiesPath is the listing and creation endpoint of a type.
func TypeEntitiesPath(typeID string) string {
	return EntitiesPath + "/" + url.PathEscape(typeID)
}

// EntityPath addresses one entity for update and delete.
func EntityPath(id string) string {
	return EntitiesPath + "/" + url.PathEscape(id)
}

func PagePath(typeID string, page, limit int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return TypeEntitiesPath(typeID) + "?" + q.Encode()
}

// Slugify lower-cases name, turns whitespace runs into a single dash and
// keeps letters, digits and dashes.
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsSpace(r):
			pendingDash = true
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
