package typegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_LoaderDefaultsToNullLoader(t *testing.T) {
	s := Settings{}
	_, ok := s.loader().(NullLoader)
	assert.True(t, ok)
}

func TestSettings_LoaderUsesConfiguredValue(t *testing.T) {
	custom := MapLoader{"scheme:thing": []byte(`{"type": "string"}`)}
	s := Settings{Loader: custom}
	assert.Equal(t, custom, s.loader())
}

func TestSettings_CtxDefaultsToBackground(t *testing.T) {
	s := Settings{}
	assert.Equal(t, context.Background(), s.ctx())
}

func TestSettings_CtxUsesConfiguredValue(t *testing.T) {
	type key struct{}
	parent := context.WithValue(context.Background(), key{}, "v")
	s := Settings{Context: parent}
	assert.Equal(t, parent, s.ctx())
}

func TestSettings_LoggerDefaultsToDiscard(t *testing.T) {
	s := Settings{}
	assert.NotPanics(t, func() { s.logger().Warnf("ignored: %d", 1) })
}
