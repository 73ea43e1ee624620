package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInventoryKeyNormalized(t *testing.T) {
	key := InventoryKey{
		ProductCode:      "123",
		GradeCode:        "A",
		ClassCode:        "1",
		ShippingMarkCode: "9",
		ShippingMarkName: "MARU",
	}
	n := key.Normalized()

	assert.Equal(t, "00000123", n.ProductCode)
	assert.Equal(t, "000A", n.GradeCode)
	assert.Equal(t, "0001", n.ClassCode)
	assert.Equal(t, "0009", n.ShippingMarkCode)
	assert.Equal(t, "MARU    ", n.ShippingMarkName)
}

func TestInventoryKeyNormalizedBlankMarkName(t *testing.T) {
	n := InventoryKey{ProductCode: "1"}.Normalized()
	assert.Equal(t, "        ", n.ShippingMarkName)
}

func TestInventoryKeyEquality(t *testing.T) {
	t.Run("equality over the normalized form", func(t *testing.T) {
		a := InventoryKey{ProductCode: "123", ShippingMarkName: "X"}
		b := InventoryKey{ProductCode: "00000123", ShippingMarkName: "X       "}
		assert.True(t, a.Equals(b))
	})

	t.Run("distinct mark names are distinct keys", func(t *testing.T) {
		a := InventoryKey{ProductCode: "123", ShippingMarkName: "X"}
		b := InventoryKey{ProductCode: "123", ShippingMarkName: "Y"}
		assert.False(t, a.Equals(b))
	})

	t.Run("normalized keys collapse in a map", func(t *testing.T) {
		seen := map[InventoryKey]int{}
		seen[InventoryKey{ProductCode: "123"}.Normalized()]++
		seen[InventoryKey{ProductCode: "00000123"}.Normalized()]++
		assert.Len(t, seen, 1)
	})
}

func TestInventoryKeyIsZero(t *testing.T) {
	assert.True(t, InventoryKey{}.IsZero())
	assert.True(t, InventoryKey{ShippingMarkName: "   "}.IsZero())
	assert.False(t, InventoryKey{ProductCode: "1"}.IsZero())
}
