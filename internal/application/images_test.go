package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageUploaderPassthroughWithoutStorage(t *testing.T) {
	u := NewImageUploader(nil, "")

	got, err := u.Store(context.Background(), "user-1", "data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", got)
}

func TestImageUploaderEmptyBlob(t *testing.T) {
	u := NewImageUploader(nil, "")

	got, err := u.Store(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSplitDataURI(t *testing.T) {
	ct, payload := splitDataURI("data:image/jpeg;base64,Zm9v")
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, "Zm9v", payload)

	// Bare base64 payloads pass through with a generic content type.
	ct, payload = splitDataURI("Zm9v")
	assert.Equal(t, "application/octet-stream", ct)
	assert.Equal(t, "Zm9v", payload)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".png", extensionFor("image/png"))
	assert.Equal(t, ".jpg", extensionFor("image/jpeg"))
	assert.Equal(t, ".webp", extensionFor("image/webp"))
	assert.Empty(t, extensionFor("application/octet-stream"))
}
