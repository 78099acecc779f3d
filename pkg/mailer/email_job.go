package mailer

// Template names understood by the match worker.
const (
	// TemplateMatchFound tells a seeker that a found report matching their
	// lost object was confirmed.
	TemplateMatchFound = "match_found"
	// TemplateItemDelivered tells a seeker their object was handed back.
	TemplateItemDelivered = "item_delivered"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending
// email. Subject/Text/HTML may be set directly, or Template and Data may
// be used to render them in the worker.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
