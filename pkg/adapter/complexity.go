package adapter

import (
	"strings"

	"github.com/panbanda/strata/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// decisionNodeTypes returns AST node types that each add one decision point.
func decisionNodeTypes(lang parser.Language) []string {
	common := []string{
		"if_statement",
		"while_statement",
		"for_statement",
		"catch_clause",
		"ternary_expression",
		"conditional_expression",
	}

	switch lang.Family() {
	case parser.LangGo:
		// Each non-default case adds a path; the switch itself does not.
		return append(common, "expression_case", "type_case", "communication_case")
	case parser.LangRust:
		// match arms are handled separately in countDecisionPoints.
		return []string{
			"if_expression", "if_let_expression", "while_expression",
			"while_let_expression", "loop_expression", "for_expression",
		}
	case parser.LangPython:
		return append(common, "elif_clause", "except_clause", "for_in_clause", "if_clause")
	case parser.LangTypeScript:
		return append(common, "for_in_statement", "do_statement", "switch_case")
	case parser.LangJava:
		return append(common, "enhanced_for_statement", "do_statement")
	default:
		return common
	}
}

// decisionSets caches the lookup set per language family.
var decisionSets = func() map[parser.Language]map[string]bool {
	sets := make(map[parser.Language]map[string]bool)
	for _, lang := range []parser.Language{parser.LangGo, parser.LangRust, parser.LangPython, parser.LangTypeScript, parser.LangJava} {
		set := make(map[string]bool)
		for _, t := range decisionNodeTypes(lang) {
			set[t] = true
		}
		sets[lang] = set
	}
	return sets
}()

// cyclomatic returns the McCabe complexity of a function body: 1 plus the
// number of decision points. A nil body (declaration only) scores 1.
func cyclomatic(body *sitter.Node, source []byte, lang parser.Language) int {
	if body == nil {
		return 1
	}
	return 1 + countDecisionPoints(body, source, lang)
}

// countDecisionPoints counts branches, loops, handlers, ternaries and
// short-circuit logical operators below node.
func countDecisionPoints(node *sitter.Node, source []byte, lang parser.Language) int {
	decisionTypes := decisionSets[lang.Family()]
	count := 0

	parser.WalkTyped(node, func(n *sitter.Node, nodeType string) bool {
		if decisionTypes[nodeType] {
			count++
		}

		switch nodeType {
		case "binary_expression", "boolean_operator":
			switch getOperator(n, source) {
			case "&&", "||", "??", "and", "or":
				count++
			}
		case "match_expression":
			// The first arm is the default path.
			if arms := countChildren(n.ChildByFieldName("body"), "match_arm"); arms > 1 {
				count += arms - 1
			}
		case "match_statement":
			// Python: same rule as match arms, over case clauses.
			clauses := countChildren(n, "case_clause")
			for _, c := range parser.NamedChildren(n) {
				if c.Type() == "block" {
					clauses += countChildren(c, "case_clause")
				}
			}
			if clauses > 1 {
				count += clauses - 1
			}
		case "switch_label":
			// Java: one per case label, default excluded.
			if strings.HasPrefix(parser.GetNodeText(n, source), "case") {
				count++
			}
		}
		return true
	})

	return count
}

// getOperator extracts the operator token from a binary expression node.
func getOperator(node *sitter.Node, source []byte) string {
	if op := node.ChildByFieldName("operator"); op != nil {
		return parser.GetNodeText(op, source)
	}
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch t := child.Type(); t {
		case "&&", "||", "??", "and", "or":
			return t
		}
	}
	return ""
}

func countChildren(node *sitter.Node, nodeType string) int {
	if node == nil {
		return 0
	}
	n := 0
	for _, child := range parser.NamedChildren(node) {
		if child.Type() == nodeType {
			n++
		}
	}
	return n
}
