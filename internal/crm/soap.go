package crm

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single SOAP round trip.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is sent as max_results. The server may ignore it.
	DefaultPageSize = 100

	sugarNamespace = "http://www.sugarcrm.com/sugarcrm"
	soapNamespace  = "http://schemas.xmlsoap.org/soap/envelope/"
)

// SOAPTransport talks to the SugarCRM soap.php endpoint.
type SOAPTransport struct {
	URL      string
	PageSize int
	client   *http.Client
}

// NewSOAPTransport creates a transport for the given endpoint URL. A zero
// timeout selects DefaultTimeout.
func NewSOAPTransport(url string, timeout time.Duration) *SOAPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SOAPTransport{
		URL:      url,
		PageSize: DefaultPageSize,
		client:   &http.Client{Timeout: timeout},
	}
}

// request envelopes

type requestEnvelope struct {
	XMLName xml.Name    `xml:"soapenv:Envelope"`
	SOAPNS  string      `xml:"xmlns:soapenv,attr"`
	Body    requestBody `xml:"soapenv:Body"`
}

type requestBody struct {
	Content any
}

type userAuth struct {
	UserName string `xml:"user_name"`
	Password string `xml:"password"`
	Version  string `xml:"version"`
}

type loginRequest struct {
	XMLName     xml.Name `xml:"http://www.sugarcrm.com/sugarcrm login"`
	UserAuth    userAuth `xml:"user_auth"`
	Application string   `xml:"application_name"`
}

type logoutRequest struct {
	XMLName xml.Name `xml:"http://www.sugarcrm.com/sugarcrm logout"`
	Session string   `xml:"session"`
}

type getEntryListRequest struct {
	XMLName      xml.Name `xml:"http://www.sugarcrm.com/sugarcrm get_entry_list"`
	Session      string   `xml:"session"`
	Module       string   `xml:"module_name"`
	Query        string   `xml:"query"`
	OrderBy      string   `xml:"order_by"`
	Offset       int      `xml:"offset"`
	SelectFields []string `xml:"select_fields>item"`
	MaxResults   int      `xml:"max_results"`
	Deleted      int      `xml:"deleted"`
}

// response envelopes

type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault   *soapFault `xml:"Fault"`
		Content []byte     `xml:",innerxml"`
	} `xml:"Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

type sugarError struct {
	Number      string `xml:"number"`
	Name        string `xml:"name"`
	Description string `xml:"description"`
}

func (e sugarError) failed() bool {
	n := strings.TrimSpace(e.Number)
	return n != "" && n != "0"
}

type loginResponse struct {
	Return struct {
		ID    string     `xml:"id"`
		Error sugarError `xml:"error"`
	} `xml:"return"`
}

type logoutResponse struct {
	Return sugarError `xml:"return"`
}

type nameValue struct {
	Name  string `xml:"name"`
	Value string `xml:"value"`
}

type entryValue struct {
	ID         string      `xml:"id"`
	Module     string      `xml:"module_name"`
	NameValues []nameValue `xml:"name_value_list>item"`
}

type getEntryListResponse struct {
	Return struct {
		ResultCount string       `xml:"result_count"`
		NextOffset  string       `xml:"next_offset"`
		Entries     []entryValue `xml:"entry_list>item"`
		Error       sugarError   `xml:"error"`
	} `xml:"return"`
}

// Login opens a session and returns its id.
func (t *SOAPTransport) Login(ctx context.Context, creds Credentials) (string, error) {
	req := loginRequest{
		UserAuth: userAuth{
			UserName: creds.User,
			Password: creds.PasswordHash,
			Version:  "1.0",
		},
		Application: creds.Application,
	}

	var resp loginResponse
	if err := t.call(ctx, "login", req, &resp); err != nil {
		return "", err
	}
	if resp.Return.Error.failed() {
		return "", &Error{Op: "login", Message: describe(resp.Return.Error)}
	}
	if resp.Return.ID == "" || resp.Return.ID == "-1" {
		return "", &Error{Op: "login", Message: "server returned no session id"}
	}
	return resp.Return.ID, nil
}

// Logout closes the session.
func (t *SOAPTransport) Logout(ctx context.Context, sessionID string) error {
	var resp logoutResponse
	if err := t.call(ctx, "logout", logoutRequest{Session: sessionID}, &resp); err != nil {
		return err
	}
	if resp.Return.failed() {
		return &Error{Op: "logout", Message: describe(resp.Return)}
	}
	return nil
}

// GetEntryList fetches one page starting at offset.
func (t *SOAPTransport) GetEntryList(ctx context.Context, sessionID string, req ListRequest, offset int) (*Page, error) {
	body := getEntryListRequest{
		Session:      sessionID,
		Module:       req.Module,
		Query:        req.Query,
		OrderBy:      req.OrderBy,
		Offset:       offset,
		SelectFields: req.Fields,
		MaxResults:   t.PageSize,
	}

	var resp getEntryListResponse
	if err := t.call(ctx, "get_entry_list", body, &resp); err != nil {
		return nil, err
	}
	ret := resp.Return
	if ret.Error.failed() {
		return nil, &Error{Op: "get_entry_list", Message: describe(ret.Error)}
	}

	count, err := parseInt(ret.ResultCount)
	if err != nil {
		return nil, &Error{Op: "get_entry_list", Message: "invalid result_count", Cause: err}
	}
	next, err := parseInt(ret.NextOffset)
	if err != nil {
		return nil, &Error{Op: "get_entry_list", Message: "invalid next_offset", Cause: err}
	}

	page := &Page{
		ResultCount: count,
		NextOffset:  next,
		Entries:     make([]Row, 0, len(ret.Entries)),
	}
	for _, entry := range ret.Entries {
		row := make(Row, len(entry.NameValues))
		for _, nv := range entry.NameValues {
			row[nv.Name] = html.UnescapeString(nv.Value)
		}
		page.Entries = append(page.Entries, row)
	}
	return page, nil
}

// call posts one SOAP request and decodes the body content into out.
func (t *SOAPTransport) call(ctx context.Context, action string, in any, out any) error {
	payload, err := xml.Marshal(requestEnvelope{
		SOAPNS: soapNamespace,
		Body:   requestBody{Content: in},
	})
	if err != nil {
		return &Error{Op: action, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return &Error{Op: action, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", sugarNamespace+"/"+action)

	resp, err := t.client.Do(req)
	if err != nil {
		return &Error{Op: action, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: action, Message: "failed to read response", Cause: err}
	}

	var env responseEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &Error{Op: action, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
		}
		return &Error{Op: action, Message: "failed to decode envelope", Cause: err}
	}
	if env.Body.Fault != nil {
		return &Error{Op: action, Message: fmt.Sprintf("SOAP fault %s: %s", env.Body.Fault.Code, env.Body.Fault.String)}
	}
	if resp.StatusCode != http.StatusOK {
		return &Error{Op: action, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	if err := xml.Unmarshal(env.Body.Content, out); err != nil {
		return &Error{Op: action, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func describe(e sugarError) string {
	if e.Description != "" && e.Description != e.Name {
		return fmt.Sprintf("%s (%s): %s", e.Name, e.Number, e.Description)
	}
	return fmt.Sprintf("%s (%s)", e.Name, e.Number)
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
