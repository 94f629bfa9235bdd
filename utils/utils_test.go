package utils

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSha512String(t *testing.T) {
	hashed := Sha512String("postboard")
	assert.Len(t, hashed, 128) // sha512 in hex
	assert.Equal(t, hashed, Sha512String("postboard"))
	assert.NotEqual(t, hashed, Sha512String("Postboard"))
}

func TestRandSalt(t *testing.T) {
	assert.NotEqual(t, RandSalt(60), RandSalt(60))
}

func TestUniqueImageName(t *testing.T) {
	name := UniqueImageName()
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.NotEqual(t, name, UniqueImageName())
}

func TestCreateThumb(t *testing.T) {
	var original bytes.Buffer
	require.NoError(t, png.Encode(&original, image.NewRGBA(image.Rect(0, 0, 2000, 1000))))

	var thumb bytes.Buffer
	result, err := CreateThumb(1280, &original, &thumb)
	require.NoError(t, err)

	assert.Equal(t, uint16(2000), result.OldX)
	assert.Equal(t, uint16(1000), result.OldY)
	assert.Equal(t, uint16(1280), result.NewX)
	assert.Equal(t, uint16(640), result.NewY)
	assert.Equal(t, int64(thumb.Len()), result.ThumbSize)

	decoded, _, err := image.Decode(&thumb)
	require.NoError(t, err)
	assert.Equal(t, 1280, decoded.Bounds().Dx())
}

func TestCreateThumbRejectsGarbage(t *testing.T) {
	var thumb bytes.Buffer
	_, err := CreateThumb(1280, strings.NewReader("not an image"), &thumb)
	assert.Error(t, err)
}
