package aggregator

import "strings"

// Category is a coarse app classification used for the productivity score.
type Category int

const (
	CategoryOther Category = iota
	CategorySocial
	CategoryEntertainment
	CategoryProductivity
	CategoryCommunication
	CategoryUtility
)

// String returns the display name of the category.
func (c Category) String() string {
	switch c {
	case CategorySocial:
		return "social"
	case CategoryEntertainment:
		return "entertainment"
	case CategoryProductivity:
		return "productivity"
	case CategoryCommunication:
		return "communication"
	case CategoryUtility:
		return "utility"
	default:
		return "other"
	}
}

// Productive reports whether time in this category counts toward the
// productive side of the score.
func (c Category) Productive() bool {
	return c == CategoryProductivity || c == CategoryUtility || c == CategoryCommunication
}

// Categorize infers a category from well-known substrings of the package
// identifier. This is a heuristic, not authoritative: unknown packages land
// in CategoryOther and count as distracting.
func Categorize(pkg string) Category {
	p := strings.ToLower(pkg)

	switch {
	case containsAny(p, "facebook", "instagram", "twitter", "tiktok", "snapchat"):
		return CategorySocial
	case containsAny(p, "netflix", "youtube", "spotify", "game"):
		return CategoryEntertainment
	case containsAny(p, "gmail", "outlook", "teams", "slack", "zoom"):
		return CategoryProductivity
	case containsAny(p, "message", "whatsapp", "telegram", "signal", "phone"):
		return CategoryCommunication
	case containsAny(p, "calculator", "clock", "calendar", "setting"):
		return CategoryUtility
	default:
		return CategoryOther
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
