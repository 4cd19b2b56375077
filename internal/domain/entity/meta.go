package entity

// SendTemplateMessage is the WhatsApp Cloud API request for a pre-approved
// template message
type SendTemplateMessage struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         MessageTemplate `json:"template"`
}

// MessageTemplate names a template and fills its parameters
type MessageTemplate struct {
	Name       string              `json:"name"`
	Language   TemplateLanguage    `json:"language"`
	Components []TemplateComponent `json:"components,omitempty"`
}

type TemplateLanguage struct {
	Code string `json:"code"`
}

type TemplateComponent struct {
	Type       string              `json:"type"`
	Parameters []TemplateParameter `json:"parameters"`
}

type TemplateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTextMessage is the WhatsApp Cloud API request for a free-form text
type SendTextMessage struct {
	MessagingProduct string      `json:"messaging_product"`
	RecipientType    string      `json:"recipient_type"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             TextMessage `json:"text"`
}

type TextMessage struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// SendMessageResponse is the success body returned by the Cloud API
type SendMessageResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}
