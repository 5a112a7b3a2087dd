package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	// HTML 转义
	assert.Equal(t, "&lt;script&gt;", SanitizeString("<script>"))

	// 控制字符被移除,换行和制表符保留
	assert.Equal(t, "a\nb\tc", SanitizeString("a\nb\tc\x00\x07"))
}

func TestValidateResourceID(t *testing.T) {
	assert.NoError(t, ValidateResourceID("550e8400-e29b-41d4-a716-446655440000"))
	assert.NoError(t, ValidateResourceID("user_01"))

	assert.ErrorIs(t, ValidateResourceID(""), ErrEmptyID)
	assert.ErrorIs(t, ValidateResourceID("id with spaces"), ErrInvalidIDFormat)
	assert.ErrorIs(t, ValidateResourceID("../etc/passwd"), ErrInvalidIDFormat)
	assert.ErrorIs(t, ValidateResourceID(strings.Repeat("a", 65)), ErrIDTooLong)
}

func TestValidateFileCode(t *testing.T) {
	assert.NoError(t, ValidateFileCode("JA123456"))
	assert.NoError(t, ValidateFileCode("  JA123456  "))

	assert.Error(t, ValidateFileCode(""))
	assert.Error(t, ValidateFileCode("ja123456"))
	assert.Error(t, ValidateFileCode("JA12345"))
	assert.Error(t, ValidateFileCode("JA1234567"))
	assert.Error(t, ValidateFileCode("J123456A"))
}

func TestTrimAndValidate(t *testing.T) {
	got, err := TrimAndValidate("  hello  ", 10)
	assert.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = TrimAndValidate("   ", 10)
	assert.ErrorIs(t, err, ErrEmptyString)

	_, err = TrimAndValidate("too long for the limit", 5)
	assert.ErrorIs(t, err, ErrStringTooLong)
}
