package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// EnrollmentEmail carries the fields rendered into the confirmation body.
type EnrollmentEmail struct {
	Name         string
	CourseName   string
	Organization string
}

// EnrollmentSubject builds the confirmation subject line.
func EnrollmentSubject(courseName string) string {
	return fmt.Sprintf("Enrollment Confirmation - %s", courseName)
}

var enrollmentTemplate = template.Must(template.New("enrollment").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9fafb;">
  <div style="background-color: white; padding: 30px; border-radius: 8px;">
    <div style="text-align: center; margin-bottom: 30px;">
      <h1 style="color: #10b981; margin: 0;">Enrollment Successful!</h1>
    </div>
    <h2 style="color: #4a5568;">Hello {{.Name}},</h2>
    <p style="font-size: 16px; line-height: 1.6; color: #4b5563;">
      Congratulations! Your payment has been successfully processed and you are now enrolled in:
    </p>
    <div style="background-color: #f3f4f6; padding: 20px; border-radius: 6px; margin: 20px 0;">
      <h3 style="color: #1f2937; margin: 0 0 10px 0;">Course Details</h3>
      <p style="margin: 5px 0; color: #4b5563;"><strong>Course:</strong> {{.CourseName}}</p>
      <p style="margin: 5px 0; color: #4b5563;"><strong>Institution:</strong> {{.Organization}}</p>
    </div>
    <div style="background-color: #ecfdf5; border-left: 4px solid #10b981; padding: 15px; margin: 20px 0;">
      <p style="margin: 0; color: #065f46;"><strong>Payment Status:</strong> Completed</p>
      <p style="margin: 5px 0; color: #065f46;"><strong>Enrollment Status:</strong> Confirmed</p>
    </div>
    <h3 style="color: #4a5568; margin-top: 30px;">What's Next?</h3>
    <ul style="color: #4b5563; line-height: 1.8;">
      <li>Check your email for further instructions from our team</li>
      <li>Your class details will be shared with you shortly</li>
    </ul>
    <p style="font-size: 16px; line-height: 1.6; color: #4b5563; margin-top: 30px;">
      If you have any questions, please contact our support team.
    </p>
    <p style="color: #6b7280; font-size: 14px;">Best regards,<br><strong>The ICL Team</strong></p>
  </div>
  <div style="text-align: center; margin-top: 20px; color: #9ca3af; font-size: 12px;">
    <p>This is an automated confirmation email. Please do not reply to this message.</p>
  </div>
</div>`))

// RenderEnrollmentEmail produces the confirmation HTML body.
func RenderEnrollmentEmail(data EnrollmentEmail) (string, error) {
	buf := &bytes.Buffer{}
	if err := enrollmentTemplate.Execute(buf, data); err != nil {
		return "", fmt.Errorf("render enrollment email: %w", err)
	}
	return buf.String(), nil
}
