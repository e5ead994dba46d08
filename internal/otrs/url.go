package otrs

import (
	"net/url"
	"strings"
)

// StateTypeIDs are the OTRS state types "new" and "open". Searches only ever
// ask for tickets in these states.
var StateTypeIDs = []int{1, 2}

// ConnectionConfig describes one OTRS web service. Build it once per run and
// pass it by value.
type ConnectionConfig struct {
	DeviceURL   string
	ServiceName string
	Username    string
	Password    string
	Routes      RouteMapping
}

// SearchFilter narrows TicketSearch. Zero fields are not sent.
type SearchFilter struct {
	// CreateTimeNewerMinutes limits results to tickets created within the
	// last n minutes. Zero or negative means no limit.
	CreateTimeNewerMinutes int
	// TitleSearch is a comma separated list of title substrings.
	TitleSearch string
}

// TitleFragments splits TitleSearch on commas, trims each part and drops
// empty ones.
func (f SearchFilter) TitleFragments() []string {
	if f.TitleSearch == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(f.TitleSearch, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ResolveRoute returns the route segment configured for op.
func ResolveRoute(op Operation, cfg ConnectionConfig) (string, error) {
	return cfg.Routes.Resolve(op)
}

// BuildGetTicketURL returns the TicketGet URL for ticketID, asking for all
// articles and attachment contents.
func BuildGetTicketURL(cfg ConnectionConfig, ticketID string) (string, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return "", &ValidationError{Field: "ticket_id", Message: "must not be empty"}
	}
	if strings.ContainsAny(ticketID, "/?#&") {
		return "", &ValidationError{Field: "ticket_id", Message: "contains reserved characters"}
	}
	base, err := operationURL(cfg, OpGetTicket)
	if err != nil {
		return "", err
	}
	query := credentialParams(cfg) +
		AppendParam("AllArticles", Int(1)) +
		AppendParam("Attachments", Int(1)) +
		AppendParam("GetAttachmentContents", Int(1))
	return base + "//" + url.PathEscape(ticketID) + joinQuery(query), nil
}

// BuildSearchTicketURL returns the TicketSearch URL for filter. Parameters
// are emitted in a fixed order: credentials, create time, state types, titles.
func BuildSearchTicketURL(cfg ConnectionConfig, filter SearchFilter) (string, error) {
	base, err := operationURL(cfg, OpSearchTicket)
	if err != nil {
		return "", err
	}
	createTime := Absent()
	if filter.CreateTimeNewerMinutes > 0 {
		createTime = Int(filter.CreateTimeNewerMinutes)
	}
	titles := filter.TitleFragments()
	for i, t := range titles {
		titles[i] = "%" + t + "%"
	}
	query := credentialParams(cfg) +
		AppendParam("TicketCreateTimeNewerMinutes", createTime) +
		AppendParam("StateTypeIDs", IntList(StateTypeIDs...)) +
		AppendParam("Title", List(titles...))
	return base + joinQuery(query), nil
}

// RedactURL hides the Password query parameter so URLs can be logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Get("Password") == "" {
		return raw
	}
	// Rewrite only the password pair to keep the parameter order intact.
	parts := strings.Split(u.RawQuery, "&")
	for i, p := range parts {
		if strings.HasPrefix(p, "Password=") {
			parts[i] = "Password=xxxxx"
		}
	}
	u.RawQuery = strings.Join(parts, "&")
	return u.String()
}

func operationURL(cfg ConnectionConfig, op Operation) (string, error) {
	seg, err := ResolveRoute(op, cfg)
	if err != nil {
		return "", err
	}
	device := strings.TrimRight(cfg.DeviceURL, "/")
	return device + "/" + EndpointPath + "/" + strings.Trim(cfg.ServiceName, "/") + "/" + seg, nil
}

func credentialParams(cfg ConnectionConfig) string {
	return AppendParam("UserLogin", Scalar(cfg.Username)) +
		AppendParam("Password", Scalar(cfg.Password))
}

func joinQuery(fragments string) string {
	fragments = strings.TrimPrefix(fragments, "&")
	if fragments == "" {
		return ""
	}
	return "?" + fragments
}
