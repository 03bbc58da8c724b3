// Package core defines the essential data structures shared across the
// application: review targets, comments, and the marker used to recognize
// previously posted automated reviews.
package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Marker is the fixed token embedded at the start of every automated review
// comment. Its presence in a comment body is how prior reviews are detected.
const Marker = "<!-- reviewbot-review -->"

// TargetKind distinguishes pull requests from issues.
type TargetKind string

const (
	KindPR    TargetKind = "pr"
	KindIssue TargetKind = "issue"
)

// TargetRef identifies one PR or issue by kind and number.
type TargetRef struct {
	Kind   TargetKind
	Number int
}

func (r TargetRef) String() string {
	return string(r.Kind) + ":" + strconv.Itoa(r.Number)
}

// ParseTargetRefs decodes an explicit target list given as a JSON array of
// "pr:N" / "issue:N" strings. Malformed JSON yields an empty list and
// malformed entries are dropped; a bad target list degrades to a no-op run
// rather than a crash.
func ParseTargetRefs(raw string) []TargetRef {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}

	refs := make([]TargetRef, 0, len(entries))
	for _, entry := range entries {
		kind, numStr, found := strings.Cut(entry, ":")
		if !found {
			continue
		}
		number, err := strconv.Atoi(numStr)
		if err != nil || number <= 0 {
			continue
		}
		switch TargetKind(kind) {
		case KindPR, KindIssue:
			refs = append(refs, TargetRef{Kind: TargetKind(kind), Number: number})
		}
	}
	return refs
}

// ReviewTarget is the transient, fully fetched view of one PR or issue under
// consideration for review. It is rebuilt from the GitHub API on every
// orchestration pass and never persisted.
type ReviewTarget struct {
	Kind   TargetKind
	Number int
	Title  string
	Body   string
	Labels []string

	// PR-only fields. Issues have no diff and no commit timeline.
	BaseRef      string
	HeadRef      string
	ChangedFiles []string
	CommitTimes  []time.Time
}

// Ref returns the target's identifying reference.
func (t *ReviewTarget) Ref() TargetRef {
	return TargetRef{Kind: t.Kind, Number: t.Number}
}

// SearchText is the free text the context selector matches keyword rules
// against: title, description, and (for PRs) the changed file names.
func (t *ReviewTarget) SearchText() string {
	parts := []string{t.Title, t.Body}
	parts = append(parts, t.ChangedFiles...)
	return strings.Join(parts, " ")
}
