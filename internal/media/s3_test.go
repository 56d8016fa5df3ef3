package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyKeepsExtension(t *testing.T) {
	key := objectKey("avatar.png")
	assert.True(t, strings.HasPrefix(key, "media/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
}

func TestObjectKeyIsUnique(t *testing.T) {
	assert.NotEqual(t, objectKey("a.jpg"), objectKey("a.jpg"))
}

func TestObjectKeyWithoutExtension(t *testing.T) {
	key := objectKey("raw-upload")
	assert.True(t, strings.HasPrefix(key, "media/"))
	assert.NotContains(t, key, " ")
}
