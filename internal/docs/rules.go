package docs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule associates a set of keyword patterns with one document. A rule fires
// when any of its patterns is found in the target text. A '.' inside a
// pattern is a word-separator wildcard: it matches one or more consecutive
// non-alphanumeric characters, so "multi.view" hits "multi view",
// "multi-view", and "multi_view" but not "multiview".
type Rule struct {
	Keywords []string `yaml:"keywords"`
	Doc      string   `yaml:"doc"`
}

// Index is the ordered keyword index plus the fixed always-include set.
// Declaration order is significant: it decides the position of each selected
// document in the final context bundle.
type Index struct {
	AlwaysInclude []string `yaml:"always_include"`
	Rules         []Rule   `yaml:"rules"`
}

const strategyDir = "graphshell_docs/implementation_strategy"
const researchDir = "graphshell_docs/research"

// DefaultIndex returns the built-in keyword index for the Graphshell design
// documentation tree.
func DefaultIndex() *Index {
	return &Index{
		AlwaysInclude: []string{
			"TERMINOLOGY.md",
			strategyDir + "/IMPLEMENTATION_ROADMAP.md",
			strategyDir + "/2026-02-24_immediate_priorities.md",
		},
		Rules: []Rule{
			{Keywords: []string{"physics", "reheat", "simulation", "force"},
				Doc: strategyDir + "/2026-02-24_physics_engine_extensibility_plan.md"},
			{Keywords: []string{"registry", "lens", "layout", "theme", "canvas"},
				Doc: strategyDir + "/2026-02-22_registry_layer_plan.md"},
			{Keywords: []string{"traversal", "history", "webview", "url"},
				Doc: strategyDir + "/2026-02-20_edge_traversal_impl_plan.md"},
			{Keywords: []string{"render", "radial", "palette", "command", "action"},
				Doc: strategyDir + "/2026-02-23_graph_interaction_consistency_plan.md"},
			{Keywords: []string{"diagnostic", "channel", "severity", "observability"},
				Doc: researchDir + "/2026-02-24_diagnostics_research.md"},
			{Keywords: []string{"pane", "tile", "workbench", "split", "tab"},
				Doc: strategyDir + "/2026-02-22_workbench_tab_semantics_overlay_and_promotion_plan.md"},
			{Keywords: []string{"graph", "node", "edge", "lasso", "select", "multi"},
				Doc: researchDir + "/2026-02-18_graph_ux_research_report.md"},
			{Keywords: []string{"multi.view", "view.state", "view.id", "graphviewid"},
				Doc: strategyDir + "/2026-02-22_multi_graph_pane_plan.md"},
			{Keywords: []string{"embedder", "wry", "verso", "webview"},
				Doc: strategyDir + "/2026-02-23_wry_integration_strategy.md"},
			{Keywords: []string{"badge", "tag", "udc", "semantic"},
				Doc: strategyDir + "/2026-02-23_udc_semantic_tagging_plan.md"},
			{Keywords: []string{"accessibility", "screen.reader", "graph.reader", "a11y"},
				Doc: strategyDir + "/2026-02-24_spatial_accessibility_plan.md"},
			{Keywords: []string{"export", "html", "interactive", "artifact"},
				Doc: strategyDir + "/2026-02-25_interactive_html_export_plan.md"},
			{Keywords: []string{"viewport", "culling", "lod", "zoom", "label"},
				Doc: strategyDir + "/2026-02-24_performance_tuning_plan.md"},
			{Keywords: []string{"verse", "sync", "peer", "identity", "trust"},
				Doc: "verse_docs/implementation_strategy/2026-02-18_verse_integration_plan.md"},
			{Keywords: []string{"settings", "config", "profile"},
				Doc: strategyDir + "/2026-02-20_settings_architecture_plan.md"},
			{Keywords: []string{"backlog", "ticket", "stub"},
				Doc: strategyDir + "/2026-02-25_backlog_ticket_stubs.md"},
		},
	}
}

// LoadIndex reads a keyword index from a YAML rules file. An empty path
// returns the built-in index.
func LoadIndex(path string) (*Index, error) {
	if path == "" {
		return DefaultIndex(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	idx := &Index{}
	if err := yaml.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	if len(idx.AlwaysInclude) == 0 {
		return nil, fmt.Errorf("rules file %s declares no always-include documents", path)
	}
	return idx, nil
}
