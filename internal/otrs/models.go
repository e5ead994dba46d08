package otrs

import (
	"bytes"
	"encoding/json"
	"time"
)

type Ticket struct {
	ID             string
	Number         string
	Title          string
	State          string
	StateType      string
	Priority       string
	Queue          string
	Type           string
	Owner          string
	CustomerUserID string
	Created        time.Time
	Changed        time.Time
	Articles       []Article
}

type Article struct {
	ID          string
	From        string
	Subject     string
	Body        string
	ContentType string
	CreateTime  time.Time
	Attachments []Attachment
}

type Attachment struct {
	Filename    string
	ContentType string
	Size        string
	// Content is base64 encoded as sent by OTRS.
	Content string
}

// flexString accepts JSON strings and numbers; OTRS versions disagree on
// which one they send for ids.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// errorBody is how the generic interface reports failures with status 200.
type errorBody struct {
	Error *struct {
		ErrorCode    string `json:"ErrorCode"`
		ErrorMessage string `json:"ErrorMessage"`
	} `json:"Error"`
}

type ticketGetResponse struct {
	errorBody
	Ticket []ticketFields `json:"Ticket"`
}

type ticketSearchResponse struct {
	errorBody
	TicketID []flexString `json:"TicketID"`
}

type ticketFields struct {
	TicketID       flexString      `json:"TicketID"`
	TicketNumber   flexString      `json:"TicketNumber"`
	Title          string          `json:"Title"`
	State          string          `json:"State"`
	StateType      string          `json:"StateType"`
	Priority       string          `json:"Priority"`
	Queue          string          `json:"Queue"`
	Type           string          `json:"Type"`
	Owner          string          `json:"Owner"`
	CustomerUserID string          `json:"CustomerUserID"`
	Created        string          `json:"Created"`
	Changed        string          `json:"Changed"`
	Article        []articleFields `json:"Article"`
}

type articleFields struct {
	ArticleID   flexString        `json:"ArticleID"`
	From        string            `json:"From"`
	Subject     string            `json:"Subject"`
	Body        string            `json:"Body"`
	ContentType string            `json:"ContentType"`
	CreateTime  string            `json:"CreateTime"`
	Attachment  []attachmentField `json:"Attachment"`
}

type attachmentField struct {
	Filename    string     `json:"Filename"`
	ContentType string     `json:"ContentType"`
	FilesizeRaw flexString `json:"FilesizeRaw"`
	Content     string     `json:"Content"`
}
