// Package notify builds outbound contact links. Nothing is sent from the server:
// the learner's browser opens the link.
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/s/eduportal/internal/models"
)

const waBase = "https://wa.me/"

// WhatsApp builds wa.me deep links addressed to the administrator phone.
type WhatsApp struct {
	phone string
}

func NewWhatsApp(adminPhone string) WhatsApp {
	return WhatsApp{phone: strings.TrimLeft(strings.TrimSpace(adminPhone), "+")}
}

// Link returns https://wa.me/<phone>?text=<text> with the text percent-encoded
// (spaces as %20).
func (w WhatsApp) Link(text string) string {
	return waBase + w.phone + "?text=" + escape(text)
}

// EnrollmentLink is the prefilled message asking the admin to approve a request.
func (w WhatsApp) EnrollmentLink(lang models.Lang, courseTitle, username string) string {
	return w.Link(EnrollmentText(lang, courseTitle, username))
}

// CertificateLink is the prefilled message asking for a course certificate.
func (w WhatsApp) CertificateLink(lang models.Lang, courseTitle, username string) string {
	return w.Link(CertificateText(lang, courseTitle, username))
}

func EnrollmentText(lang models.Lang, courseTitle, username string) string {
	if lang == models.LangEn {
		return fmt.Sprintf("Hello Admin, I am requesting enrollment for the course: %s. My username is %s.", courseTitle, username)
	}
	return fmt.Sprintf("مرحباً أيها المشرف، أطلب التسجيل في الدورة: %s. اسم المستخدم الخاص بي هو %s.", courseTitle, username)
}

func CertificateText(lang models.Lang, courseTitle, username string) string {
	if lang == models.LangEn {
		return fmt.Sprintf("Requesting certificate for course: %s (user: %s)", courseTitle, username)
	}
	return fmt.Sprintf("أطلب شهادة الدورة: %s (المستخدم: %s)", courseTitle, username)
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
