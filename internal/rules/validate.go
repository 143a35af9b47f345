// internal/rules/validate.go
package rules

import (
	"fmt"
	"strings"

	"github.com/rulesmith/rulesmith/internal/types"
)

/*
 * Rule validation.
 *
 * Walks the full tree pre-order, depth-first, and collects every issue found
 * rather than stopping at the first, so issue ordering is deterministic and
 * matches the visual top-to-bottom node order. Issues are data about the
 * rule's content, never errors: the kernel returns the complete list and the
 * embedding application decides how to present it.
 *
 * Issue taxonomy:
 *   - EmptyGroup / RedundantGroup: structural, severity set by Policy.
 *     RedundantGroup applies to non-root groups only; the root is the
 *     conventional wrapper and one condition under it is a complete rule
 *   - UnknownField / UnknownOperator: id not in the catalog (rule files
 *     loaded from disk can reference anything)
 *   - IncompatibleOperator: operator not legal for the field's type
 *   - MalformedOperand: operand fails the shape check
 *   - OperandOutOfDomain: enum literal outside the field's allowed set
 *   - MissingName: rule-level, name empty after trimming
 *
 * Each issue carries a message template key plus interpolation arguments;
 * rendering the text is the collaborator's concern.
 */

// IssueKind classifies a validation issue.
type IssueKind string

const (
	IssueEmptyGroup           IssueKind = "empty_group"
	IssueRedundantGroup       IssueKind = "redundant_group"
	IssueUnknownField         IssueKind = "unknown_field"
	IssueUnknownOperator      IssueKind = "unknown_operator"
	IssueIncompatibleOperator IssueKind = "incompatible_operator"
	IssueMalformedOperand     IssueKind = "malformed_operand"
	IssueOperandOutOfDomain   IssueKind = "operand_out_of_domain"
	IssueMissingName          IssueKind = "missing_name"
)

// Severity grades a validation issue.
// Warnings never block a rule; errors make it unusable for evaluation.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity converts a configuration string to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SeverityWarning):
		return SeverityWarning, nil
	case string(SeverityError):
		return SeverityError, nil
	default:
		return "", fmt.Errorf("unknown severity %q (expected warning or error)", s)
	}
}

// Policy sets the severity of the structural issues whose blocking behavior
// is a product decision rather than a hard fact: an empty or single-child
// group is vacuous but harmless.
type Policy struct {
	EmptyGroup     Severity
	RedundantGroup Severity
}

// DefaultPolicy flags vacuous groups without blocking the rule.
func DefaultPolicy() Policy {
	return Policy{
		EmptyGroup:     SeverityWarning,
		RedundantGroup: SeverityWarning,
	}
}

// Issue is one structured validation finding.
type Issue struct {
	Kind     IssueKind
	Severity Severity
	// Path addresses the offending node; nil for rule-level issues.
	// The root is the empty, non-nil path.
	Path Path
	// Key is a message template key; Args are its interpolation arguments
	// (display names, offending literals). Message text is rendered by the
	// embedding application.
	Key  string
	Args []string
}

// HasErrors reports whether any issue in the list is error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks rule structure and content against the catalog and returns
// every issue found, in pre-order traversal order. Rule-level issues come
// first. An empty result means the rule is usable by an evaluation engine.
func Validate(rule *types.Rule, cat *Catalog, pol Policy) []Issue {
	var issues []Issue

	if strings.TrimSpace(rule.Name) == "" {
		issues = append(issues, Issue{
			Kind:     IssueMissingName,
			Severity: SeverityError,
			Key:      "issue.missing_name",
		})
	}

	if rule.Root != nil {
		issues = validateNode(issues, rule.Root, Path{}, cat, pol)
	}
	return issues
}

func validateNode(issues []Issue, node *types.Node, p Path, cat *Catalog, pol Policy) []Issue {
	if node.IsGroup() {
		switch len(node.Children) {
		case 0:
			issues = append(issues, Issue{
				Kind:     IssueEmptyGroup,
				Severity: pol.EmptyGroup,
				Path:     p,
				Key:      "issue.empty_group",
				Args:     []string{string(node.Connective)},
			})
		case 1:
			// The root group is the conventional wrapper around the whole
			// rule; one condition under it is a complete rule, not a
			// redundant nesting level.
			if len(p) == 0 {
				break
			}
			issues = append(issues, Issue{
				Kind:     IssueRedundantGroup,
				Severity: pol.RedundantGroup,
				Path:     p,
				Key:      "issue.redundant_group",
				Args:     []string{string(node.Connective)},
			})
		}
		for i, child := range node.Children {
			issues = validateNode(issues, child, p.Child(i), cat, pol)
		}
		return issues
	}

	return validateCondition(issues, node, p, cat)
}

func validateCondition(issues []Issue, node *types.Node, p Path, cat *Catalog) []Issue {
	field, fieldOK := cat.FieldByID(node.Field)
	if !fieldOK {
		return append(issues, Issue{
			Kind:     IssueUnknownField,
			Severity: SeverityError,
			Path:     p,
			Key:      "issue.unknown_field",
			Args:     []string{string(node.Field)},
		})
	}

	op, opOK := cat.OperatorByID(node.Operator)
	if !opOK {
		return append(issues, Issue{
			Kind:     IssueUnknownOperator,
			Severity: SeverityError,
			Path:     p,
			Key:      "issue.unknown_operator",
			Args:     []string{string(node.Operator), field.Name},
		})
	}

	if !op.CompatibleWith(field.Type) {
		issues = append(issues, Issue{
			Kind:     IssueIncompatibleOperator,
			Severity: SeverityError,
			Path:     p,
			Key:      "issue.incompatible_operator",
			Args:     []string{op.Name, field.Name},
		})
	}

	if !cat.IsOperandWellFormed(node.Operator, node.Field, node.Operand) {
		issues = append(issues, Issue{
			Kind:     IssueMalformedOperand,
			Severity: SeverityError,
			Path:     p,
			Key:      "issue.malformed_operand",
			Args:     []string{field.Name, node.Operand},
		})
		return issues
	}

	// Domain membership only makes sense for a well-formed enum operand.
	if field.Type == FieldTypeEnum {
		if out := outOfDomain(field, op, node.Operand); len(out) > 0 {
			issues = append(issues, Issue{
				Kind:     IssueOperandOutOfDomain,
				Severity: SeverityError,
				Path:     p,
				Key:      "issue.operand_out_of_domain",
				Args:     append([]string{field.Name}, out...),
			})
		}
	}
	return issues
}

// outOfDomain returns the operand literals missing from the enum field's
// allowed set, in operand order.
func outOfDomain(field Field, op Operator, operand string) []string {
	literals := []string{strings.TrimSpace(operand)}
	if op.MultiValued {
		elems, ok := SplitOperandList(operand)
		if !ok {
			return nil
		}
		literals = elems
	}

	allowed := make(map[string]bool, len(field.Domain))
	for _, d := range field.Domain {
		allowed[d] = true
	}

	var out []string
	for _, lit := range literals {
		if !allowed[lit] {
			out = append(out, lit)
		}
	}
	return out
}
