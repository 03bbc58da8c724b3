// Package licensegate checks dependency license expressions against an
// allowlist of permissive SPDX identifiers.
package licensegate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// allowedLicenseIDs are SPDX identifiers a dependency may carry.
var allowedLicenseIDs = map[string]struct{}{
	"MIT":                 {},
	"Apache-2.0":          {},
	"BSD-1-Clause":        {},
	"BSD-2-Clause":        {},
	"BSD-3-Clause":        {},
	"ISC":                 {},
	"MPL-2.0":             {},
	"Zlib":                {},
	"BSL-1.0":             {},
	"CC0-1.0":             {},
	"MIT-0":               {},
	"NCSA":                {},
	"Unicode-3.0":         {},
	"Unicode-DFS-2016":    {},
	"OFL-1.1":             {},
	"Ubuntu-font-1.0":     {},
	"CDLA-Permissive-2.0": {},
	"OpenSSL":             {},
	"Unlicense":           {},
	"0BSD":                {},
}

// bannedOnlyIDs are copyleft identifiers that fail the gate unless the
// expression offers an alternative via OR.
var bannedOnlyIDs = map[string]struct{}{
	"GPL-2.0":           {},
	"GPL-2.0-only":      {},
	"GPL-2.0-or-later":  {},
	"GPL-3.0":           {},
	"GPL-3.0-only":      {},
	"GPL-3.0-or-later":  {},
	"AGPL-3.0":          {},
	"AGPL-3.0-only":     {},
	"AGPL-3.0-or-later": {},
	"LGPL-2.1-only":     {},
	"LGPL-2.1-or-later": {},
	"LGPL-3.0-only":     {},
	"LGPL-3.0-or-later": {},
}

// allowedUnknown maps package names with missing license metadata to the
// reason they are temporarily tolerated.
var allowedUnknown = map[string]string{
	"tokio-tungstenite-wasm": "temporary allowlist: upstream crate metadata omits license expression",
}

var tokenRe = regexp.MustCompile(`[A-Za-z0-9.+-]+`)

// Package is one entry of a license scan report.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	License string `json:"license"`
}

// Violation is a package whose license expression failed the gate.
type Violation struct {
	Name    string
	Version string
	License string
	Reason  string
}

// Unknown is a package without a usable license expression that is not
// allowlisted.
type Unknown struct {
	Name    string
	Version string
	Reason  string
}

// Report is the outcome of gating one scan.
type Report struct {
	Violations []Violation
	Unknowns   []Unknown
}

// Passed reports whether every package cleared the gate.
func (r *Report) Passed() bool {
	return len(r.Violations) == 0 && len(r.Unknowns) == 0
}

// extractTokens pulls SPDX-ish identifiers out of a license expression,
// dropping the AND/OR/WITH operators.
func extractTokens(expr string) []string {
	seen := make(map[string]struct{})
	for _, tok := range tokenRe.FindAllString(expr, -1) {
		if tok == "AND" || tok == "OR" || tok == "WITH" {
			continue
		}
		seen[tok] = struct{}{}
	}
	tokens := make([]string, 0, len(seen))
	for tok := range seen {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// CheckExpression decides whether a single license expression is acceptable.
// An expression passes when it offers at least one allowed license and is
// not a copyleft-only grant; a banned identifier is tolerated only when the
// expression contains an OR alternative.
func CheckExpression(expr string) (bool, string) {
	tokens := extractTokens(expr)
	if len(tokens) == 0 {
		return false, "no SPDX tokens found"
	}

	hasAllowed := false
	hasBanned := false
	for _, tok := range tokens {
		if _, ok := allowedLicenseIDs[tok]; ok {
			hasAllowed = true
		}
		if _, ok := bannedOnlyIDs[tok]; ok {
			hasBanned = true
		}
	}

	if !hasAllowed {
		return false, fmt.Sprintf("no allowed license option in expression (%s)", expr)
	}
	if hasBanned && !strings.Contains(expr, "OR") {
		return false, fmt.Sprintf("banned copyleft-only expression (%s)", expr)
	}
	return true, "ok"
}

// Gate checks every package of a scan and collects the failures.
func Gate(packages []Package) *Report {
	report := &Report{}
	for _, pkg := range packages {
		expr := strings.TrimSpace(pkg.License)
		if expr == "" {
			if _, ok := allowedUnknown[pkg.Name]; !ok {
				report.Unknowns = append(report.Unknowns, Unknown{
					Name:    pkg.Name,
					Version: pkg.Version,
					Reason:  "missing license expression",
				})
			}
			continue
		}

		if ok, reason := CheckExpression(expr); !ok {
			report.Violations = append(report.Violations, Violation{
				Name:    pkg.Name,
				Version: pkg.Version,
				License: expr,
				Reason:  reason,
			})
		}
	}
	return report
}

// GateJSON parses a JSON scan report and gates it.
func GateJSON(data []byte) (*Report, error) {
	var packages []Package
	if err := json.Unmarshal(data, &packages); err != nil {
		return nil, fmt.Errorf("failed to parse license report: %w", err)
	}
	return Gate(packages), nil
}

// Render formats the report the way the CI log expects it.
func (r *Report) Render() string {
	if r.Passed() {
		return "License gate passed: all packages have acceptable license options and unknowns are allowlisted.\n"
	}

	var b strings.Builder
	b.WriteString("License gate failed.\n")
	if len(r.Violations) > 0 {
		b.WriteString("\nDisallowed license findings:\n")
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "- %s %s: %s (%s)\n", v.Name, v.Version, v.License, v.Reason)
		}
	}
	if len(r.Unknowns) > 0 {
		b.WriteString("\nUnknown/unlicensed findings (not allowlisted):\n")
		for _, u := range r.Unknowns {
			fmt.Fprintf(&b, "- %s %s: %s\n", u.Name, u.Version, u.Reason)
		}
	}
	if len(allowedUnknown) > 0 {
		b.WriteString("\nCurrent allowlisted unknowns:\n")
		names := make([]string, 0, len(allowedUnknown))
		for name := range allowedUnknown {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %s\n", name, allowedUnknown[name])
		}
	}
	return b.String()
}
