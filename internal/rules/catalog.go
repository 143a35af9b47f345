// internal/rules/catalog.go
package rules

import (
	"fmt"

	"github.com/rulesmith/rulesmith/internal/types"
)

/*
 * Field and operator catalog.
 *
 * Static registry of the fields a rule condition may reference and the
 * operators legal for each field's semantic type. Read-only after
 * construction; the process builds exactly one catalog at startup (from
 * configuration or Default) and passes it explicitly to the validator and
 * any embedding application. No ambient global state.
 *
 * Key types:
 *   - Field: Identifier, display name, semantic type, enum domain
 *   - Operator: Identifier, compatible field types, operand arity
 *   - Catalog: Ordered field/operator sets with O(1) id lookup
 *
 * Unknown ids are an internal contract violation, not a user-facing error:
 * ids only ever originate from the catalog itself. Lookup methods return a
 * boolean rather than an error for that reason.
 */

// FieldType is the semantic type of a catalog field.
type FieldType string

const (
	FieldTypeNumeric FieldType = "numeric"
	FieldTypeText    FieldType = "text"
	FieldTypeEnum    FieldType = "enum"
	FieldTypeIP      FieldType = "ip"
)

// Field describes one selectable field. Immutable once the catalog is built.
type Field struct {
	ID     types.FieldID
	Name   string // display name
	Type   FieldType
	Domain []string // allowed literals, enum fields only
}

// Operator describes one comparison operator, the field types it accepts,
// and whether its operand is a multi-value set.
type Operator struct {
	ID          types.OperatorID
	Name        string // display name
	Types       []FieldType
	MultiValued bool // operand is a comma-separated set ("in"-style)
}

// CompatibleWith reports whether the operator accepts fields of type t.
func (o Operator) CompatibleWith(t FieldType) bool {
	for _, ft := range o.Types {
		if ft == t {
			return true
		}
	}
	return false
}

// Catalog is the process-wide field/operator registry.
// Fields and operators keep their construction order, which is also the
// display order presented to rule builders.
type Catalog struct {
	fields    []Field
	operators []Operator
	fieldByID map[types.FieldID]int
	opByID    map[types.OperatorID]int
}

// NewCatalog builds a catalog from field and operator definitions.
// Rejects duplicate ids, enum fields without a domain, and operators with no
// compatible types, since a malformed catalog would misvalidate every rule.
func NewCatalog(fields []Field, operators []Operator) (*Catalog, error) {
	c := &Catalog{
		fields:    fields,
		operators: operators,
		fieldByID: make(map[types.FieldID]int, len(fields)),
		opByID:    make(map[types.OperatorID]int, len(operators)),
	}

	for i, f := range fields {
		if f.ID == "" {
			return nil, fmt.Errorf("field %d has empty id", i)
		}
		if _, dup := c.fieldByID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate field id %q", f.ID)
		}
		if f.Type == FieldTypeEnum && len(f.Domain) == 0 {
			return nil, fmt.Errorf("enum field %q has empty domain", f.ID)
		}
		if f.Type != FieldTypeNumeric && f.Type != FieldTypeText &&
			f.Type != FieldTypeEnum && f.Type != FieldTypeIP {
			return nil, fmt.Errorf("field %q has unknown type %q", f.ID, f.Type)
		}
		c.fieldByID[f.ID] = i
	}

	for i, o := range operators {
		if o.ID == "" {
			return nil, fmt.Errorf("operator %d has empty id", i)
		}
		if _, dup := c.opByID[o.ID]; dup {
			return nil, fmt.Errorf("duplicate operator id %q", o.ID)
		}
		if len(o.Types) == 0 {
			return nil, fmt.Errorf("operator %q compatible with no field types", o.ID)
		}
		c.opByID[o.ID] = i
	}

	return c, nil
}

// Fields returns all fields in display order.
func (c *Catalog) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Operators returns all operators in display order.
func (c *Catalog) Operators() []Operator {
	out := make([]Operator, len(c.operators))
	copy(out, c.operators)
	return out
}

// FieldByID looks up a field definition.
func (c *Catalog) FieldByID(id types.FieldID) (Field, bool) {
	i, ok := c.fieldByID[id]
	if !ok {
		return Field{}, false
	}
	return c.fields[i], true
}

// OperatorByID looks up an operator definition.
func (c *Catalog) OperatorByID(id types.OperatorID) (Operator, bool) {
	i, ok := c.opByID[id]
	if !ok {
		return Operator{}, false
	}
	return c.operators[i], true
}

// OperatorsFor returns the operators legal for the given field, in display
// order. Returns nil for an unknown field id.
func (c *Catalog) OperatorsFor(id types.FieldID) []Operator {
	f, ok := c.FieldByID(id)
	if !ok {
		return nil
	}
	var out []Operator
	for _, o := range c.operators {
		if o.CompatibleWith(f.Type) {
			out = append(out, o)
		}
	}
	return out
}

// IsOperandWellFormed checks operand syntactic shape only: a numeric operand
// parses as a number, an ip operand parses as an address, a multi-valued
// operand parses as a non-empty bounded list of well-formed elements.
// Enum domain membership is the validator's concern, not shape.
// Unknown operator or field ids report false.
func (c *Catalog) IsOperandWellFormed(op types.OperatorID, field types.FieldID, operand string) bool {
	o, ok := c.OperatorByID(op)
	if !ok {
		return false
	}
	f, ok := c.FieldByID(field)
	if !ok {
		return false
	}

	if o.MultiValued {
		elems, ok := SplitOperandList(operand)
		if !ok || len(elems) > types.MaxInOperatorValues {
			return false
		}
		for _, e := range elems {
			if !scalarWellFormed(f.Type, e) {
				return false
			}
		}
		return true
	}

	return scalarWellFormed(f.Type, operand)
}

// Catalog ids for the built-in operator set.
const (
	OpEquals             types.OperatorID = "equals"
	OpNotEquals          types.OperatorID = "not_equals"
	OpGreaterThan        types.OperatorID = "greater_than"
	OpLessThan           types.OperatorID = "less_than"
	OpGreaterThanOrEqual types.OperatorID = "greater_than_or_equal"
	OpLessThanOrEqual    types.OperatorID = "less_than_or_equal"
	OpContains           types.OperatorID = "contains"
	OpIn                 types.OperatorID = "in"
)

// DefaultOperators returns the built-in operator set.
// Ordering relations bind to numeric fields only; contains is text-only;
// equality binds to every type; in is the sole multi-valued operator.
func DefaultOperators() []Operator {
	all := []FieldType{FieldTypeNumeric, FieldTypeText, FieldTypeEnum, FieldTypeIP}
	numeric := []FieldType{FieldTypeNumeric}
	return []Operator{
		{ID: OpEquals, Name: "Equals", Types: all},
		{ID: OpNotEquals, Name: "Not Equals", Types: all},
		{ID: OpGreaterThan, Name: "Greater Than", Types: numeric},
		{ID: OpLessThan, Name: "Less Than", Types: numeric},
		{ID: OpGreaterThanOrEqual, Name: "Greater Than or Equal", Types: numeric},
		{ID: OpLessThanOrEqual, Name: "Less Than or Equal", Types: numeric},
		{ID: OpContains, Name: "Contains", Types: []FieldType{FieldTypeText}},
		{ID: OpIn, Name: "In", Types: []FieldType{FieldTypeText, FieldTypeEnum, FieldTypeIP}, MultiValued: true},
	}
}

// DefaultFields returns the built-in fraud detection field set.
func DefaultFields() []Field {
	return []Field{
		{ID: "transaction_amount", Name: "Transaction Amount", Type: FieldTypeNumeric},
		{ID: "transaction_currency", Name: "Transaction Currency", Type: FieldTypeEnum,
			Domain: []string{"USD", "EUR", "GBP", "CAD", "JPY", "AUD"}},
		{ID: "user_country", Name: "User Country", Type: FieldTypeEnum,
			Domain: []string{"US", "CA", "UK", "DE", "FR", "JP", "AU", "BR"}},
		{ID: "user_age", Name: "User Age", Type: FieldTypeNumeric},
		{ID: "ip_address", Name: "IP Address", Type: FieldTypeIP},
		{ID: "device_fingerprint", Name: "Device Fingerprint", Type: FieldTypeText},
		{ID: "transaction_count_24h", Name: "Transaction Count (24h)", Type: FieldTypeNumeric},
		{ID: "account_age", Name: "Account Age", Type: FieldTypeNumeric},
	}
}

// Default returns the built-in catalog.
// The definitions are known-good, so the error path is unreachable.
func Default() *Catalog {
	c, err := NewCatalog(DefaultFields(), DefaultOperators())
	if err != nil {
		panic(err)
	}
	return c
}
