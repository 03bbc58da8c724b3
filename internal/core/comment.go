package core

import (
	"strings"
	"time"
)

// Comment is a single comment previously posted on a review target.
type Comment struct {
	Body      string
	UpdatedAt time.Time
}

// HasMarker reports whether the comment was produced by the bot.
func (c Comment) HasMarker() bool {
	return strings.Contains(c.Body, Marker)
}

// LastBotComment returns the most recent marker-bearing comment, judged by
// UpdatedAt rather than by position in the slice. The GitHub API usually
// returns comments oldest-first, but the contract here is "most recent by
// timestamp" so callers never depend on page order.
func LastBotComment(comments []Comment) (Comment, bool) {
	var (
		last  Comment
		found bool
	)
	for _, c := range comments {
		if !c.HasMarker() {
			continue
		}
		if !found || c.UpdatedAt.After(last.UpdatedAt) {
			last = c
			found = true
		}
	}
	return last, found
}
