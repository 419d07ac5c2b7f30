// Package crm provides access to the SugarCRM SOAP API used as the exhibitor
// data source.
package crm

import "context"

// Row is a single listing entry: CRM field name to string value.
type Row map[string]string

// Get returns the value for field, or "" if the field was not returned.
func (r Row) Get(field string) string {
	if r == nil {
		return ""
	}
	return r[field]
}

// ListRequest describes a get_entry_list query.
type ListRequest struct {
	Module  string
	Query   string
	OrderBy string
	Fields  []string
}

// Page is one page of a get_entry_list response.
type Page struct {
	ResultCount int
	NextOffset  int
	Entries     []Row
}

// Credentials authenticate a SOAP session. PasswordHash is the md5 hex digest
// of the plain password, see HashPassword.
type Credentials struct {
	User         string
	PasswordHash string
	Application  string
}

// Transport is the remote procedure surface the client needs.
type Transport interface {
	Login(ctx context.Context, creds Credentials) (string, error)
	Logout(ctx context.Context, sessionID string) error
	GetEntryList(ctx context.Context, sessionID string, req ListRequest, offset int) (*Page, error)
}
