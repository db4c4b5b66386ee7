package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreaterThan(t *testing.T) {
	c := NewGreaterThan(90)
	assert.True(t, c.IsTriggered(91))
	assert.False(t, c.IsTriggered(90))
	assert.False(t, c.IsTriggered(10))
	assert.Equal(t, ConditionGreaterThan, c.Type())
	assert.Empty(t, c.Children())
}

func TestLessThan(t *testing.T) {
	c := NewLessThan(10)
	assert.True(t, c.IsTriggered(5))
	assert.False(t, c.IsTriggered(10))
	assert.False(t, c.IsTriggered(50))
}

func TestAnd(t *testing.T) {
	c := NewAnd(NewGreaterThan(10), NewLessThan(20))
	assert.True(t, c.IsTriggered(15))
	assert.False(t, c.IsTriggered(5))
	assert.False(t, c.IsTriggered(25))
	assert.Len(t, c.Children(), 2)
}

func TestOr(t *testing.T) {
	c := NewOr(NewGreaterThan(90), NewLessThan(10))
	assert.True(t, c.IsTriggered(95))
	assert.True(t, c.IsTriggered(5))
	assert.False(t, c.IsTriggered(50))
}

func TestNot(t *testing.T) {
	c := NewNot(NewGreaterThan(90))
	assert.True(t, c.IsTriggered(50))
	assert.False(t, c.IsTriggered(95))
	assert.Len(t, c.Children(), 1)
}

func TestNestedComposite(t *testing.T) {
	// NOT (value > 90 AND value < 95) -- triggers outside the 90-95 band
	c := NewNot(NewAnd(NewGreaterThan(90), NewLessThan(95)))
	assert.True(t, c.IsTriggered(50))
	assert.False(t, c.IsTriggered(92))
}

func TestDescribe(t *testing.T) {
	c := NewAnd(NewGreaterThan(90), NewLessThan(95))
	assert.Equal(t, "(> 90 AND < 95)", c.Describe())
}
