package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayered(t *testing.T) {
	t.Run("lookup order follows registration", func(t *testing.T) {
		l := NewLayered()
		l.Register("env", Map{"A": "env"})
		l.Register("dotenv", Map{"A": "dotenv", "B": "dotenv"})

		v, layer, ok := l.LookupLayer("A")
		assert.True(t, ok)
		assert.Equal(t, "env", v)
		assert.Equal(t, "env", layer)

		v, layer, ok = l.LookupLayer("B")
		assert.True(t, ok)
		assert.Equal(t, "dotenv", v)
		assert.Equal(t, "dotenv", layer)

		_, _, ok = l.LookupLayer("C")
		assert.False(t, ok)
	})

	t.Run("register replaces in place", func(t *testing.T) {
		l := NewLayered()
		l.Register("first", Map{"A": "1"})
		l.Register("second", Map{"A": "2"})
		l.Register("first", Map{})

		assert.Equal(t, []string{"first", "second"}, l.Names())
		v, ok := l.Lookup("A")
		assert.True(t, ok)
		assert.Equal(t, "2", v)
	})

	t.Run("names returns a copy", func(t *testing.T) {
		l := NewLayered()
		l.Register("env", Map{})
		names := l.Names()
		names[0] = "changed"
		assert.Equal(t, []string{"env"}, l.Names())
	})

	t.Run("invalid registration panics", func(t *testing.T) {
		l := NewLayered()
		assert.Panics(t, func() { l.Register("", Map{}) })
		assert.Panics(t, func() { l.Register("nil", nil) })
	})
}
