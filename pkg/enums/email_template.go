package enums

import "fmt"

// EmailTemplate names a template pair under templates/email.
type EmailTemplate string

const (
	EmailTemplateWelcome           EmailTemplate = "welcome_email"
	EmailTemplateWelcomeNoName     EmailTemplate = "welcome_email_noname"
	EmailTemplateWelcomeNewsletter EmailTemplate = "welcome_email_newsletter"
)

var validEmailTemplates = []EmailTemplate{
	EmailTemplateWelcome,
	EmailTemplateWelcomeNoName,
	EmailTemplateWelcomeNewsletter,
}

func (t EmailTemplate) IsValid() bool {
	for _, candidate := range validEmailTemplates {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseEmailTemplate converts a raw template name into EmailTemplate.
func ParseEmailTemplate(value string) (EmailTemplate, error) {
	for _, candidate := range validEmailTemplates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid email template %q", value)
}
