package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiniCartDefaultsToClosed(t *testing.T) {
	svc := NewMiniCartService()
	assert.Equal(t, MiniCartClosed, svc.State("s1"))
}

func TestMiniCartOpenAndClose(t *testing.T) {
	svc := NewMiniCartService()

	svc.OpenMini("s1")
	assert.Equal(t, MiniCartMini, svc.State("s1"))

	svc.OpenExpanded("s1")
	assert.Equal(t, MiniCartExpanded, svc.State("s1"))

	svc.Close("s1")
	assert.Equal(t, MiniCartClosed, svc.State("s1"))
}

func TestMiniCartExpandOnlyFromMini(t *testing.T) {
	svc := NewMiniCartService()

	// closed stays closed
	svc.Expand("s1")
	assert.Equal(t, MiniCartClosed, svc.State("s1"))

	svc.OpenMini("s1")
	svc.Expand("s1")
	assert.Equal(t, MiniCartExpanded, svc.State("s1"))

	// expanding again is a no-op
	svc.Expand("s1")
	assert.Equal(t, MiniCartExpanded, svc.State("s1"))
}

func TestMiniCartSessionsAreIsolated(t *testing.T) {
	svc := NewMiniCartService()

	svc.OpenExpanded("alice")
	assert.Equal(t, MiniCartExpanded, svc.State("alice"))
	assert.Equal(t, MiniCartClosed, svc.State("bob"))
}
