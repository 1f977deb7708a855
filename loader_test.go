package typegen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLoader_Load_JSONPassthrough(t *testing.T) {
	loader := MapLoader{"widget.json": []byte(`{"type":"string"}`)}
	data, err := loader.Load(context.Background(), "widget.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"string"}`, string(data))
}

func TestMapLoader_Load_MissingURI(t *testing.T) {
	loader := MapLoader{}
	_, err := loader.Load(context.Background(), "missing.json")
	require.Error(t, err)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, loadErr.Detail, ErrNoLoaderRegistered)
}

func TestMapLoader_Load_YAMLBySuffix(t *testing.T) {
	loader := MapLoader{"widget.yaml": []byte("type: string\nminLength: 3\n")}
	data, err := loader.Load(context.Background(), "widget.yaml")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"string","minLength":3}`, string(data))
}

func TestMapLoader_Load_YAMLBySniff(t *testing.T) {
	loader := MapLoader{"widget": []byte("type: object\nproperties:\n  name:\n    type: string\n")}
	data, err := loader.Load(context.Background(), "widget")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{"name":{"type":"string"}}}`, string(data))
}

func TestLooksLikeYAML(t *testing.T) {
	assert.True(t, looksLikeYAML("a.yaml", []byte("type: string")))
	assert.True(t, looksLikeYAML("a.yml", []byte("type: string")))
	assert.True(t, looksLikeYAML("a", []byte("  type: string")))
	assert.False(t, looksLikeYAML("a", []byte(`{"type":"string"}`)))
	assert.False(t, looksLikeYAML("a", []byte("  \n  {\"type\":\"string\"}")))
}

func TestNullLoader_AlwaysFails(t *testing.T) {
	_, err := NullLoader{}.Load(context.Background(), "anything")
	require.Error(t, err)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
}

func TestChainLoader_TriesEachInOrder(t *testing.T) {
	chain := ChainLoader{
		NullLoader{},
		MapLoader{"a.json": []byte(`{"type":"string"}`)},
	}
	data, err := chain.Load(context.Background(), "a.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"string"}`, string(data))
}

func TestChainLoader_AllFail(t *testing.T) {
	chain := ChainLoader{NullLoader{}, NullLoader{}}
	_, err := chain.Load(context.Background(), "missing")
	require.Error(t, err)
}

func TestSchemeLoader_DispatchesByScheme(t *testing.T) {
	s := SchemeLoader{
		"mem": MapLoader{"mem://a": []byte(`{"type":"string"}`)},
	}
	data, err := s.Load(context.Background(), "mem://a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"string"}`, string(data))

	_, err = s.Load(context.Background(), "other://a")
	require.Error(t, err)
}

func TestDefaultLoaders_RegistersHTTPAndHTTPS(t *testing.T) {
	loaders, ok := DefaultLoaders().(SchemeLoader)
	require.True(t, ok)
	_, hasHTTP := loaders["http"]
	_, hasHTTPS := loaders["https"]
	assert.True(t, hasHTTP)
	assert.True(t, hasHTTPS)
}
