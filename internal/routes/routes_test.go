package routes_test

import (
	"testing"

	"github.com/aiflashlang/flashlang-web/internal/routes"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want routes.Class
	}{
		{routes.PathIndex, routes.Public},
		{routes.PathFeatures, routes.Public},
		{routes.PathLogin, routes.Public},
		{routes.PathRegister, routes.Public},
		{routes.PathVerified, routes.Public},
		{routes.PathResendVerification, routes.Public},
		{routes.PathCreate, routes.Private},
		{routes.PathMyWords, routes.PrivateVerified},
		{routes.PathMyAccount, routes.PrivateVerified},
		{routes.PathImport, routes.PrivateVerified},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, routes.Classify(tt.path))
		})
	}
}

func TestClassify_UnknownPathFailsClosed(t *testing.T) {
	assert.Equal(t, routes.Private, routes.Classify("/admin"))
	assert.Equal(t, routes.Private, routes.Classify("/my-words/delete"))
	assert.Equal(t, routes.Private, routes.Classify(""))
}

func TestIsPublic(t *testing.T) {
	assert.True(t, routes.IsPublic(routes.PathVerified))
	assert.False(t, routes.IsPublic(routes.PathCreate))
	assert.False(t, routes.IsPublic("/nonexistent"))
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "public", routes.Public.String())
	assert.Equal(t, "private", routes.Private.String())
	assert.Equal(t, "private+verified", routes.PrivateVerified.String())
}
