package review

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

// PromptKey names one prompt template.
type PromptKey string

const (
	PRReviewPrompt    PromptKey = "pr_review"
	IssueReviewPrompt PromptKey = "issue_review"
)

// PRPromptData feeds the pull-request review template.
type PRPromptData struct {
	Number  int
	Title   string
	Body    string
	BaseRef string
	HeadRef string
	Labels  string
	Files   string
	Diff    string
	Docs    string
	Marker  string
}

// IssuePromptData feeds the issue readiness-review template.
type IssuePromptData struct {
	Number int
	Title  string
	Body   string
	Labels string
	Docs   string
	Marker string
}

// PromptManager holds the parsed prompt templates, loaded from the embedded
// prompts directory at startup.
type PromptManager struct {
	prompts map[PromptKey]*template.Template
}

// NewPromptManager parses every embedded *.prompt file. File names are the
// prompt keys.
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{prompts: make(map[PromptKey]*template.Template)}

	files, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompts directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		key := PromptKey(strings.TrimSuffix(name, filepath.Ext(name)))

		content, err := promptFiles.ReadFile("prompts/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded prompt %s: %w", name, err)
		}
		tmpl, err := template.New(string(key)).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt %s: %w", name, err)
		}
		pm.prompts[key] = tmpl
	}

	for _, required := range []PromptKey{PRReviewPrompt, IssueReviewPrompt} {
		if _, ok := pm.prompts[required]; !ok {
			return nil, fmt.Errorf("missing embedded prompt template %q", required)
		}
	}
	return pm, nil
}

// Render executes a prompt template with the given data.
func (pm *PromptManager) Render(key PromptKey, data any) (string, error) {
	tmpl, ok := pm.prompts[key]
	if !ok {
		return "", fmt.Errorf("no prompt template for key %q", key)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %q: %w", key, err)
	}
	return buf.String(), nil
}
