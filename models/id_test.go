package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeID(t *testing.T) {
	want := primitive.NewObjectID()

	for name, input := range map[string]interface{}{
		"object id":     want,
		"hex string":    want.Hex(),
		"extended json": map[string]interface{}{"$oid": want.Hex()},
		"api wrapper":   map[string]interface{}{"id": want.Hex()},
	} {
		got, err := NormalizeID(input)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestNormalizeIDRejects(t *testing.T) {
	for name, input := range map[string]interface{}{
		"nil":           nil,
		"bad hex":       "not-an-id",
		"empty doc":     map[string]interface{}{},
		"wrong type":    42,
		"non-string id": map[string]interface{}{"id": 42},
	} {
		_, err := NormalizeID(input)
		assert.Error(t, err, name)
	}
}
