package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_ValidSpec(t *testing.T) {
	assert.NoError(t, testSpec().Validate())
}

func TestValidate_Name(t *testing.T) {
	spec := testSpec()
	spec.Name = ""
	assert.ErrorIs(t, spec.Validate(), ErrMissingName)

	spec.Name = strings.Repeat("a", MaxJobNameLength+1)
	assert.ErrorIs(t, spec.Validate(), ErrNameTooLong)

	spec.Name = "9starts-with-digit"
	assert.ErrorIs(t, spec.Validate(), ErrInvalidName)

	spec.Name = "has spaces"
	assert.ErrorIs(t, spec.Validate(), ErrInvalidName)

	spec.Name = "ok-name_v1.2"
	assert.NoError(t, spec.Validate())
}

func TestValidate_QueueAndDefinition(t *testing.T) {
	spec := testSpec()
	spec.JobQueue = ""
	assert.ErrorIs(t, spec.Validate(), ErrMissingQueue)

	spec = testSpec()
	spec.JobDefinition = ""
	assert.ErrorIs(t, spec.Validate(), ErrMissingDefinition)
}

func TestValidate_Resources(t *testing.T) {
	spec := testSpec()
	spec.Resources.VCPUs = -1
	assert.ErrorIs(t, spec.Validate(), ErrInvalidResources)

	spec = testSpec()
	spec.Resources.MemoryMiB = -1
	assert.ErrorIs(t, spec.Validate(), ErrInvalidResources)

	// Zero means "use the definition's defaults".
	spec = testSpec()
	spec.Resources = ResourceSpec{}
	assert.NoError(t, spec.Validate())
}

func TestSanitizeErrorMessage(t *testing.T) {
	assert.Equal(t, "", SanitizeErrorMessage(""))
	assert.Equal(t, "plain message", SanitizeErrorMessage("plain message"))
	assert.Equal(t, "keeps\nnewlines", SanitizeErrorMessage("keeps\nnewlines"))
	assert.Equal(t, "strips control", SanitizeErrorMessage("strips\x00 control\x1b"))

	long := strings.Repeat("x", MaxErrorMessageLength+100)
	sanitized := SanitizeErrorMessage(long)
	assert.Len(t, sanitized, MaxErrorMessageLength)
	assert.True(t, strings.HasSuffix(sanitized, "..."))
}
