package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("complete_the_look",
		StringPart("product", "P1"),
		StringPart("color", "C1"),
		BoolPart("in_stock", true),
		BoolPart("on_sale", false),
		IntPart("limit", 10),
		IntPart("offset", 0),
	)
	b := Fingerprint("complete_the_look",
		StringPart("product", "P1"),
		StringPart("color", "C1"),
		BoolPart("in_stock", true),
		BoolPart("on_sale", false),
		IntPart("limit", 10),
		IntPart("offset", 0),
	)
	assert.Equal(t, a, b)
}

func TestFingerprint_DistinguishesRelevantParameters(t *testing.T) {
	base := func(product, color string, inStock, onSale bool, limit, offset int) string {
		return Fingerprint("complete_the_look",
			StringPart("product", product),
			StringPart("color", color),
			BoolPart("in_stock", inStock),
			BoolPart("on_sale", onSale),
			IntPart("limit", limit),
			IntPart("offset", offset),
		)
	}

	ref := base("P1", "C1", true, false, 10, 0)
	assert.NotEqual(t, ref, base("P2", "C1", true, false, 10, 0))
	assert.NotEqual(t, ref, base("P1", "C2", true, false, 10, 0))
	assert.NotEqual(t, ref, base("P1", "C1", false, false, 10, 0))
	assert.NotEqual(t, ref, base("P1", "C1", true, true, 10, 0))
	assert.NotEqual(t, ref, base("P1", "C1", true, false, 20, 0))
	assert.NotEqual(t, ref, base("P1", "C1", true, false, 10, 5))
}

func TestFingerprint_DistinguishesOperations(t *testing.T) {
	a := Fingerprint("complete_the_look", StringPart("product", "P1"))
	b := Fingerprint("visually_similar", StringPart("product", "P1"))
	assert.NotEqual(t, a, b)
}

func TestFingerprint_PartCanonicalization(t *testing.T) {
	assert.Equal(t, StringPart("product", "P1"), StringPart("product", "  P1  "))
	assert.Equal(t, "in_stock=true", BoolPart("in_stock", true))
	assert.Equal(t, "limit=0", IntPart("limit", 0))
}

func TestFingerprint_OptBoolDistinguishesAbsentFromFalse(t *testing.T) {
	f := false
	tr := true
	assert.Equal(t, "in_stock=absent", OptBoolPart("in_stock", nil))
	assert.Equal(t, "in_stock=false", OptBoolPart("in_stock", &f))
	assert.Equal(t, "in_stock=true", OptBoolPart("in_stock", &tr))
	assert.NotEqual(t, OptBoolPart("in_stock", nil), OptBoolPart("in_stock", &f))
}
