package core

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// ReviewCommand is the comment trigger for an on-demand review.
const ReviewCommand = "/review"

// RequestFromIssueComment translates a GitHub issue_comment event into a
// review request. Comments that are not a review command, or that come from
// bots, are rejected with a reason rather than an actionable error.
func RequestFromIssueComment(event *github.IssueCommentEvent) (*ReviewRequest, error) {
	if event.GetAction() != "created" {
		return nil, fmt.Errorf("ignoring action %q", event.GetAction())
	}
	if event.GetComment().GetUser().GetType() == "Bot" {
		return nil, fmt.Errorf("ignoring bot comment")
	}

	fields := strings.Fields(event.GetComment().GetBody())
	if len(fields) == 0 || fields[0] != ReviewCommand {
		return nil, fmt.Errorf("comment is not a review command")
	}
	force := len(fields) > 1 && fields[1] == "force"

	number := event.GetIssue().GetNumber()
	if number <= 0 {
		return nil, fmt.Errorf("event carries no issue number")
	}

	kind := KindIssue
	if event.GetIssue().IsPullRequest() {
		kind = KindPR
	}
	return &ReviewRequest{
		Ref:            TargetRef{Kind: kind, Number: number},
		Force:          force,
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}
