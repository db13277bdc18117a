package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	nt "sift/entity"
)

var schema = nt.Schema{
	"name":   {Kind: nt.KindString},
	"age":    {Kind: nt.KindNumber},
	"joined": {Kind: nt.KindDate},
	"active": {Kind: nt.KindBoolean},
	"tags":   {Kind: nt.KindCustom},
}

func TestKindOf(t *testing.T) {

	assert.Equal(t, nt.KindNumber, schema.KindOf("age"))
	assert.Equal(t, nt.Kind(""), schema.KindOf("nope"))

	assert.True(t, nt.KindDate.Comparable())
	assert.False(t, nt.KindBoolean.Comparable())
	assert.False(t, nt.KindCustom.Comparable())
}

func TestOperatorsFor(t *testing.T) {

	assert.Len(t, nt.OperatorsFor(nt.KindNumber), 6)
	assert.Len(t, nt.OperatorsFor(nt.KindString), 9)
	assert.Empty(t, nt.OperatorsFor(nt.KindBoolean))
	assert.Empty(t, nt.OperatorsFor(nt.KindCustom))
}

func TestAllows(t *testing.T) {

	assert.True(t, schema.Allows("age", nt.OpGte))
	assert.True(t, schema.Allows("name", nt.OpStartsWith))

	// pattern operators are for strings only
	assert.False(t, schema.Allows("age", nt.OpContains))
	assert.False(t, schema.Allows("joined", nt.OpEndsWith))

	assert.False(t, schema.Allows("active", nt.OpEq))
	assert.False(t, schema.Allows("nope", nt.OpEq))
}
