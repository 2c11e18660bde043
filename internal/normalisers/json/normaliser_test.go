package json

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

func TestNormalise_Indents(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/repo/config.json",
		MIMEType: MIMEType,
		Content:  []byte(`{"name":"repochat","tags":["a","b"]}`),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	expected := "{\n  \"name\": \"repochat\",\n  \"tags\": [\n    \"a\",\n    \"b\"\n  ]\n}"
	assert.Equal(t, expected, result.Document.Content)
	assert.Equal(t, "/repo/config.json", result.Document.Source())
	assert.Equal(t, "json", result.Document.Metadata["format"])
}

func TestNormalise_InvalidJSON(t *testing.T) {
	raw := &domain.RawDocument{URI: "/repo/broken.json", MIMEType: MIMEType, Content: []byte(`{"name":`)}

	result, err := New().Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrLoaderFailure)
	assert.Contains(t, err.Error(), "/repo/broken.json")
	assert.Nil(t, result)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPriorityAndMIMETypes(t *testing.T) {
	n := New()
	assert.Equal(t, 50, n.Priority())
	assert.Equal(t, []string{"application/json"}, n.SupportedMIMETypes())
}
