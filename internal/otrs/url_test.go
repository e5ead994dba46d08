package otrs

import (
	"strings"
	"testing"
)

func testConfig() ConnectionConfig {
	return ConnectionConfig{
		DeviceURL:   "https://otrs.example.com",
		ServiceName: "GenericTicketConnector",
		Username:    "bot",
		Password:    "secret",
		Routes:      NewDefaultRouteMapping(nil),
	}
}

func TestBuildGetTicketURL(t *testing.T) {
	got, err := BuildGetTicketURL(testConfig(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://otrs.example.com/otrs/nph-genericinterface.pl/Webservice/GenericTicketConnector/TicketGet//42?UserLogin=bot&Password=secret&AllArticles=1&Attachments=1&GetAttachmentContents=1"
	if got != want {
		t.Fatalf("unexpected url:\n got %s\nwant %s", got, want)
	}
}

func TestBuildGetTicketURLWithoutCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Username = ""
	cfg.Password = ""
	cfg.DeviceURL = "https://otrs.example.com/"
	got, err := BuildGetTicketURL(cfg, "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://otrs.example.com/otrs/nph-genericinterface.pl/Webservice/GenericTicketConnector/TicketGet//7?AllArticles=1&Attachments=1&GetAttachmentContents=1"
	if got != want {
		t.Fatalf("unexpected url:\n got %s\nwant %s", got, want)
	}
}

func TestBuildGetTicketURLRejectsBadID(t *testing.T) {
	for _, id := range []string{"", "   ", "1/2", "1?x"} {
		_, err := BuildGetTicketURL(testConfig(), id)
		if !IsValidationError(err) {
			t.Fatalf("id %q: expected validation error, got %v", id, err)
		}
	}
}

func TestBuildGetTicketURLUnknownRoute(t *testing.T) {
	cfg := testConfig()
	cfg.Routes = RouteMapping{}
	_, err := BuildGetTicketURL(cfg, "42")
	if !IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBuildSearchTicketURL(t *testing.T) {
	got, err := BuildSearchTicketURL(testConfig(), SearchFilter{
		CreateTimeNewerMinutes: 30,
		TitleSearch:            " foo , bar ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://otrs.example.com/otrs/nph-genericinterface.pl/Webservice/GenericTicketConnector/TicketSearch" +
		"?UserLogin=bot&Password=secret&TicketCreateTimeNewerMinutes=30" +
		"&StateTypeIDs=1&StateTypeIDs=2&Title=%25foo%25&Title=%25bar%25"
	if got != want {
		t.Fatalf("unexpected url:\n got %s\nwant %s", got, want)
	}
}

func TestBuildSearchTicketURLEmptyFilter(t *testing.T) {
	got, err := BuildSearchTicketURL(testConfig(), SearchFilter{TitleSearch: " , ,"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(got, "TicketSearch?UserLogin=bot&Password=secret&StateTypeIDs=1&StateTypeIDs=2") {
		t.Fatalf("unexpected url: %s", got)
	}
	if strings.Contains(got, "TicketCreateTimeNewerMinutes") || strings.Contains(got, "Title=") {
		t.Fatalf("empty filter fields leaked into url: %s", got)
	}
}

func TestBuildSearchTicketURLZeroAgeIsAbsent(t *testing.T) {
	got, err := BuildSearchTicketURL(testConfig(), SearchFilter{CreateTimeNewerMinutes: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "TicketCreateTimeNewerMinutes") {
		t.Fatalf("zero age should not be sent: %s", got)
	}
}

func TestTitleFragments(t *testing.T) {
	got := SearchFilter{TitleSearch: "alert, ,phishing ,  malware"}.TitleFragments()
	want := []string{"alert", "phishing", "malware"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRedactURL(t *testing.T) {
	u, _ := BuildGetTicketURL(testConfig(), "42")
	got := RedactURL(u)
	if strings.Contains(got, "secret") {
		t.Fatalf("password not redacted: %s", got)
	}
	if !strings.Contains(got, "UserLogin=bot&Password=xxxxx&AllArticles=1") {
		t.Fatalf("unexpected redacted url: %s", got)
	}
}
