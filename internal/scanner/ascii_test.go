package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualFold(t *testing.T) {
	assert.True(t, EqualFold("XmlHttpRequest", "XMLHTTPREQUEST"))
	assert.True(t, EqualFold("", ""))
	assert.False(t, EqualFold("abc", "ab"))
	assert.False(t, EqualFold("abc", "abd"))
}

func TestHasPrefixSuffix(t *testing.T) {
	assert.True(t, HasPrefix("||silly.com^", "||"))
	assert.False(t, HasPrefix("|silly.com", "||"))
	assert.True(t, HasSuffix("example.com", "com"))
	assert.False(t, HasSuffix("com", "example.com"))
}

func TestIndexByteFromOffset(t *testing.T) {
	s := "a/b:c"
	assert.Equal(t, 1, IndexByte(s, '/', 0))
	assert.Equal(t, -1, IndexByte(s, '/', 2))
	assert.Equal(t, 3, IndexByte(s, ':', 2))
}

func TestLastIndexByte(t *testing.T) {
	assert.Equal(t, 5, LastIndexByte("a$b$c$", '$'))
	assert.Equal(t, -1, LastIndexByte("abc", '$'))
}

func TestSplitPreservesEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "", "b"}, Split("a,,b", ','))
	assert.Equal(t, []string{""}, Split("", ','))
}

func TestAnchorAndSeparatorClasses(t *testing.T) {
	for _, b := range []byte("/:?=&*^") {
		assert.True(t, IsAnchorEnd(b))
	}
	assert.False(t, IsAnchorEnd('x'))

	for _, b := range []byte("/:?=&") {
		assert.True(t, IsSeparator(b))
	}
	assert.False(t, IsSeparator('*'))
	assert.False(t, IsSeparator('^'))
}
