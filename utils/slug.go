package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fiam/gounidecode/unidecode"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify transliterates s to ASCII and joins its words with dashes.
func Slugify(s string) string {
	ascii := strings.ToLower(unidecode.Unidecode(s))
	return strings.Trim(nonSlugChars.ReplaceAllString(ascii, "-"), "-")
}

// CategorySlug lower-cases name and replaces whitespace runs with dashes.
func CategorySlug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// UniqueSlug appends -2, -3, ... to base until exists reports the slug free.
func UniqueSlug(base string, exists func(string) (bool, error)) (string, error) {
	if base == "" {
		base = "product"
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := exists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(i)
	}
}
