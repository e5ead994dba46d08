package otrs

import (
	"encoding/json"
	"fmt"
	"time"
)

// parseTimestamp tries the layouts OTRS emits. Layouts without a zone are
// read in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	layouts := []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	var err error
	for _, layout := range layouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
}

// ParseTickets decodes a TicketGet response body.
func ParseTickets(data []byte, loc *time.Location) ([]Ticket, error) {
	var resp ticketGetResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding ticket response: %w", err)
	}
	if resp.Error != nil {
		return nil, bodyError("get ticket", resp.errorBody, data)
	}
	tickets := make([]Ticket, 0, len(resp.Ticket))
	for _, f := range resp.Ticket {
		created, err := parseTimestamp(f.Created, loc)
		if err != nil {
			return nil, err
		}
		changed, err := parseTimestamp(f.Changed, loc)
		if err != nil {
			return nil, err
		}
		t := Ticket{
			ID:             string(f.TicketID),
			Number:         string(f.TicketNumber),
			Title:          f.Title,
			State:          f.State,
			StateType:      f.StateType,
			Priority:       f.Priority,
			Queue:          f.Queue,
			Type:           f.Type,
			Owner:          f.Owner,
			CustomerUserID: f.CustomerUserID,
			Created:        created,
			Changed:        changed,
		}
		for _, a := range f.Article {
			createTime, err := parseTimestamp(a.CreateTime, loc)
			if err != nil {
				return nil, err
			}
			article := Article{
				ID:          string(a.ArticleID),
				From:        a.From,
				Subject:     a.Subject,
				Body:        a.Body,
				ContentType: a.ContentType,
				CreateTime:  createTime,
			}
			for _, att := range a.Attachment {
				article.Attachments = append(article.Attachments, Attachment{
					Filename:    att.Filename,
					ContentType: att.ContentType,
					Size:        string(att.FilesizeRaw),
					Content:     att.Content,
				})
			}
			t.Articles = append(t.Articles, article)
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// ParseTicketIDs decodes a TicketSearch response body. A body without
// TicketID means nothing matched.
func ParseTicketIDs(data []byte) ([]string, error) {
	var resp ticketSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	if resp.Error != nil {
		return nil, bodyError("search tickets", resp.errorBody, data)
	}
	ids := make([]string, 0, len(resp.TicketID))
	for _, id := range resp.TicketID {
		ids = append(ids, string(id))
	}
	return ids, nil
}

func bodyError(errContext string, body errorBody, raw []byte) error {
	return &RemoteError{
		Context:    errContext,
		StatusCode: 200,
		Status:     body.Error.ErrorMessage,
		ErrorCode:  body.Error.ErrorCode,
		Body:       string(raw),
	}
}
