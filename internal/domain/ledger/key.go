package ledger

import "strings"

// Fixed widths of the code fields that make up an inventory key. Codes are
// zero-padded on the left; the shipping mark name is space-padded on the right.
const (
	ProductCodeWidth      = 8
	GradeCodeWidth        = 4
	ClassCodeWidth        = 4
	ShippingMarkCodeWidth = 4
	ShippingMarkNameWidth = 8
)

// InventoryKey is the composite identity of one stock-keeping position.
// Equality is defined over the normalized form, so keys must be normalized
// before they are compared or used as map keys.
type InventoryKey struct {
	ProductCode      string
	GradeCode        string
	ClassCode        string
	ShippingMarkCode string
	ShippingMarkName string
}

// Normalized returns the key with every field brought to its fixed width.
// An all-blank shipping mark name is a valid, distinct value.
func (k InventoryKey) Normalized() InventoryKey {
	return InventoryKey{
		ProductCode:      padCode(k.ProductCode, ProductCodeWidth),
		GradeCode:        padCode(k.GradeCode, GradeCodeWidth),
		ClassCode:        padCode(k.ClassCode, ClassCodeWidth),
		ShippingMarkCode: padCode(k.ShippingMarkCode, ShippingMarkCodeWidth),
		ShippingMarkName: padName(k.ShippingMarkName, ShippingMarkNameWidth),
	}
}

// Equals reports whether two keys identify the same position.
func (k InventoryKey) Equals(other InventoryKey) bool {
	return k.Normalized() == other.Normalized()
}

// IsZero reports whether the key is entirely empty.
func (k InventoryKey) IsZero() bool {
	return k.ProductCode == "" && k.GradeCode == "" && k.ClassCode == "" &&
		k.ShippingMarkCode == "" && strings.TrimSpace(k.ShippingMarkName) == ""
}

// String renders the normalized key as a single diagnostic token.
func (k InventoryKey) String() string {
	n := k.Normalized()
	return n.ProductCode + "/" + n.GradeCode + "/" + n.ClassCode + "/" +
		n.ShippingMarkCode + "/" + n.ShippingMarkName
}

func padCode(s string, width int) string {
	s = strings.TrimSpace(s)
	if len(s) >= width {
		return s[:width]
	}
	return strings.Repeat("0", width-len(s)) + s
}

func padName(s string, width int) string {
	s = strings.TrimRight(s, " ")
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
