// internal/rules/operand.go
package rules

import (
	"net/netip"
	"strconv"
	"strings"
)

/*
 * Operand shape parsing.
 *
 * Operands arrive as raw strings from the embedding application (form input);
 * the kernel checks their syntactic shape against the field's semantic type.
 * Shape only: enum domain membership is a separate validator check.
 *
 * Per-type rules:
 *   - numeric: trimmed string parses via strconv.ParseFloat
 *   - text/enum: non-empty after trimming
 *   - ip: parses via netip.ParseAddr (v4 or v6)
 *
 * Multi-valued operands are comma-separated; every element must itself be
 * well-formed and non-empty, and the list must be non-empty.
 */

// SplitOperandList splits a multi-valued operand ("US,CA,UK") into trimmed
// elements. Reports false for an empty list or any empty element.
func SplitOperandList(operand string) ([]string, bool) {
	if strings.TrimSpace(operand) == "" {
		return nil, false
	}
	parts := strings.Split(operand, ",")
	elems := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, false
		}
		elems = append(elems, p)
	}
	return elems, true
}

// scalarWellFormed checks a single operand value against a field type.
func scalarWellFormed(t FieldType, s string) bool {
	s = strings.TrimSpace(s)
	switch t {
	case FieldTypeNumeric:
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	case FieldTypeText, FieldTypeEnum:
		return s != ""
	case FieldTypeIP:
		_, err := netip.ParseAddr(s)
		return err == nil
	default:
		return false
	}
}
