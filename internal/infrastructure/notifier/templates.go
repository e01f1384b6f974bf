package notifier

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
)

const (
	platformName      = "FAIT Co-op"
	dateLayout        = "January 2, 2006"
	statusFeedMessage = "Your verification status has been updated. Please check your email for details."
)

const htmlLayout = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 5px;">
  <h2 style="color: #333;">{{.Heading}}</h2>
  <p>Hello {{.Name}},</p>
{{- range .Paragraphs}}
  <p>{{.}}</p>
{{- end}}
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee;">
    <p>{{.Closing}}</p>
  </div>
</div>
`

const textLayout = `{{.Heading}}

Hello {{.Name}},
{{range .Paragraphs}}
{{.}}
{{end}}
{{.Closing}}
`

// Content is one rendered notification
type Content struct {
	Subject string
	HTML    string
	Text    string
	// Title and Message feed the in-app record
	Title   string
	Message string
}

type layoutData struct {
	Heading    string
	Name       string
	Paragraphs []string
	Closing    string
}

type message struct {
	subject string
	layoutData
	feed string
}

// Renderer turns a kind and its context into mail and feed content
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		html: htmltemplate.Must(htmltemplate.New("html").Parse(htmlLayout)),
		text: texttemplate.Must(texttemplate.New("text").Parse(textLayout)),
	}
}

func (r *Renderer) Render(kind entities.NotificationKind, nc entities.NotificationContext) (*Content, error) {
	var msg message
	switch kind {
	case entities.NotificationKindStatusUpdate:
		msg = statusMessage(nc)
	case entities.NotificationKindDocumentOutcome:
		msg = documentMessage(nc)
	case entities.NotificationKindExpirationReminder:
		msg = reminderMessage(nc)
	default:
		return nil, fmt.Errorf("unknown notification kind %q", kind)
	}

	msg.Name = nc.ProviderName
	if strings.TrimSpace(msg.Name) == "" {
		msg.Name = "there"
	}

	var html, text bytes.Buffer
	if err := r.html.Execute(&html, msg.layoutData); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	if err := r.text.Execute(&text, msg.layoutData); err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}

	return &Content{
		Subject: msg.subject,
		HTML:    html.String(),
		Text:    text.String(),
		Title:   msg.subject,
		Message: msg.feed,
	}, nil
}

func statusMessage(nc entities.NotificationContext) message {
	switch nc.NewStatus {
	case entities.VerificationStatusApproved:
		paragraphs := []string{
			"Congratulations! Your verification has been approved.",
			"You now have full access to all features of the " + platformName + " platform.",
		}
		if !nc.ExpirationDate.IsZero() {
			paragraphs = append(paragraphs, "Your verification is valid until "+nc.ExpirationDate.Format(dateLayout)+".")
		}
		return message{
			subject: "Your Verification Has Been Approved!",
			layoutData: layoutData{
				Heading:    "Verification Approved",
				Paragraphs: paragraphs,
				Closing:    "Thank you for being part of " + platformName + "!",
			},
			feed: statusFeedMessage,
		}
	case entities.VerificationStatusRejected:
		paragraphs := []string{"We've reviewed your verification submission and found some issues that need to be addressed."}
		if nc.RejectionReason != "" {
			paragraphs = append(paragraphs, "Reason: "+nc.RejectionReason)
		}
		paragraphs = append(paragraphs, "Please log into your account to address these issues and resubmit your verification.")
		return message{
			subject: "Your Verification Requires Attention",
			layoutData: layoutData{
				Heading:    "Verification Requires Attention",
				Paragraphs: paragraphs,
				Closing:    "If you have any questions, please contact our support team.",
			},
			feed: statusFeedMessage,
		}
	case entities.VerificationStatusInReview:
		return message{
			subject: "Your Verification Is Being Reviewed",
			layoutData: layoutData{
				Heading: "Verification In Review",
				Paragraphs: []string{
					"Your verification submission is now being reviewed by our team.",
					"We'll notify you once the review is complete. This typically takes 1-2 business days.",
				},
				Closing: "Thank you for your patience.",
			},
			feed: statusFeedMessage,
		}
	case entities.VerificationStatusExpired:
		return message{
			subject: "Your Verification Has Expired",
			layoutData: layoutData{
				Heading: "Verification Expired",
				Paragraphs: []string{
					"Your verification has expired. To continue using all features of the " + platformName + " platform, please renew your verification.",
					"Log into your account and visit the verification page to start the renewal process.",
				},
				Closing: "We look forward to continuing our partnership.",
			},
			feed: statusFeedMessage,
		}
	case entities.VerificationStatusPending:
	}

	return message{
		subject: "Verification Status Update",
		layoutData: layoutData{
			Heading: "Verification Status Update",
			Paragraphs: []string{
				"There has been an update to your verification status.",
				"Please log into your account to view the details.",
			},
			Closing: "Thank you for being part of " + platformName + "!",
		},
		feed: statusFeedMessage,
	}
}

func documentMessage(nc entities.NotificationContext) message {
	name := nc.DocumentName
	if name == "" {
		name = nc.DocumentType.Label()
	}

	if nc.DocumentStatus == entities.DocumentStatusApproved {
		return message{
			subject: "Document Approved: " + name,
			layoutData: layoutData{
				Heading: "Document Approved",
				Paragraphs: []string{
					"Good news! Your document " + name + " has been approved.",
					"You can view your verification status by logging into your account.",
				},
				Closing: "Thank you for being part of " + platformName + "!",
			},
			feed: "Your document " + name + " has been approved.",
		}
	}

	paragraphs := []string{"Your document " + name + " requires attention."}
	if nc.RejectionReason != "" {
		paragraphs = append(paragraphs, "Reason: "+nc.RejectionReason)
	}
	paragraphs = append(paragraphs, "Please log into your account to upload a new document or address the issues mentioned.")
	return message{
		subject: "Document Requires Attention: " + name,
		layoutData: layoutData{
			Heading:    "Document Requires Attention",
			Paragraphs: paragraphs,
			Closing:    "Thank you for your cooperation.",
		},
		feed: "Your document " + name + " requires attention. Please check your email for details.",
	}
}

func reminderMessage(nc entities.NotificationContext) message {
	expires := "soon"
	if !nc.ExpirationDate.IsZero() {
		expires = "on " + nc.ExpirationDate.Format(dateLayout)
	}
	return message{
		subject: fmt.Sprintf("Your Verification Will Expire in %d Days", nc.DaysRemaining),
		layoutData: layoutData{
			Heading: "Verification Expiration Reminder",
			Paragraphs: []string{
				fmt.Sprintf("This is a reminder that your verification will expire in %d days (%s).", nc.DaysRemaining, expires),
				"To maintain your verified status, please log into your account and renew your verification before it expires.",
			},
			Closing: "Thank you for being part of " + platformName + "!",
		},
		feed: fmt.Sprintf("Your verification will expire in %d days. Renew it to stay verified.", nc.DaysRemaining),
	}
}
