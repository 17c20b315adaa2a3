package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEnrollmentEmail(t *testing.T) {
	html, err := RenderEnrollmentEmail(EnrollmentEmail{
		Name:         "Asha Rao",
		CourseName:   "Go Bootcamp",
		Organization: "ICL",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Hello Asha Rao")
	assert.Contains(t, html, "Go Bootcamp")
	assert.Contains(t, html, "Enrollment Successful!")
}

func TestRenderEnrollmentEmailEscapesHTML(t *testing.T) {
	html, err := RenderEnrollmentEmail(EnrollmentEmail{
		Name: `<script>alert("x")</script>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestEnrollmentSubject(t *testing.T) {
	assert.Equal(t, "Enrollment Confirmation - Go Bootcamp", EnrollmentSubject("Go Bootcamp"))
}
