package crm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport serves canned pages and records every call.
type fakeTransport struct {
	pages    []*Page
	pageErr  error
	loginErr error
	logout   error

	logins  int
	logouts int
	offsets []int
}

func (f *fakeTransport) Login(_ context.Context, _ Credentials) (string, error) {
	f.logins++
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "session-1", nil
}

func (f *fakeTransport) Logout(_ context.Context, sessionID string) error {
	f.logouts++
	if sessionID != "session-1" {
		return fmt.Errorf("unexpected session %q", sessionID)
	}
	return f.logout
}

func (f *fakeTransport) GetEntryList(_ context.Context, _ string, _ ListRequest, offset int) (*Page, error) {
	f.offsets = append(f.offsets, offset)
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	i := len(f.offsets) - 1
	if i >= len(f.pages) {
		return &Page{}, nil
	}
	return f.pages[i], nil
}

func makePage(count, next int) *Page {
	page := &Page{ResultCount: count, NextOffset: next}
	for i := 0; i < count; i++ {
		page.Entries = append(page.Entries, Row{"id": fmt.Sprintf("%d", next-count+i)})
	}
	return page
}

func TestFetchAll_AccumulatesUntilEmptyPage(t *testing.T) {
	ft := &fakeTransport{pages: []*Page{makePage(50, 50), makePage(50, 100), {ResultCount: 0, NextOffset: 100}}}
	client := NewClient(ft, Credentials{User: "soap"}, nil)

	rows, err := client.FetchAll(context.Background(), ListRequest{Module: "Accounts"})
	require.NoError(t, err)

	assert.Len(t, rows, 100)
	assert.Equal(t, []int{0, 50, 100}, ft.offsets)
	assert.Equal(t, 1, ft.logins)
	assert.Equal(t, 1, ft.logouts)
}

func TestFetchAll_UsesServerCursor(t *testing.T) {
	// Server-controlled page sizes: 3 rows then 2 rows, cursor jumps ahead.
	ft := &fakeTransport{pages: []*Page{makePage(3, 10), makePage(2, 25), {}}}
	client := NewClient(ft, Credentials{}, nil)

	rows, err := client.FetchAll(context.Background(), ListRequest{Module: "Accounts"})
	require.NoError(t, err)

	assert.Len(t, rows, 5)
	assert.Equal(t, []int{0, 10, 25}, ft.offsets)
}

func TestFetchAll_EmptyResult(t *testing.T) {
	ft := &fakeTransport{}
	client := NewClient(ft, Credentials{}, nil)

	rows, err := client.FetchAll(context.Background(), ListRequest{Module: "Accounts"})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Len(t, ft.offsets, 1)
}

func TestFetchAll_TransportErrorPropagatesAndLogsOut(t *testing.T) {
	transportErr := &Error{Op: "get_entry_list", Message: "request failed", Cause: errors.New("connection reset")}
	ft := &fakeTransport{pageErr: transportErr}
	client := NewClient(ft, Credentials{}, nil)

	_, err := client.FetchAll(context.Background(), ListRequest{Module: "Accounts"})
	require.Error(t, err)
	assert.Same(t, transportErr, err)
	assert.Equal(t, 1, ft.logouts, "session must be released on error")
}

func TestFetchAll_StalledCursor(t *testing.T) {
	ft := &fakeTransport{pages: []*Page{makePage(5, 0)}}
	client := NewClient(ft, Credentials{}, nil)

	_, err := client.FetchAll(context.Background(), ListRequest{Module: "Accounts"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStalledCursor)
}

func TestWithSession_LoginFailureSkipsLogout(t *testing.T) {
	ft := &fakeTransport{loginErr: errors.New("invalid login")}
	client := NewClient(ft, Credentials{}, nil)

	called := false
	err := client.WithSession(context.Background(), func(*Session) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, 0, ft.logouts)
}

func TestWithSession_LogoutErrorReturnedOnlyOnSuccess(t *testing.T) {
	logoutErr := errors.New("logout refused")

	ft := &fakeTransport{logout: logoutErr}
	client := NewClient(ft, Credentials{}, nil)
	err := client.WithSession(context.Background(), func(*Session) error { return nil })
	assert.ErrorIs(t, err, logoutErr)

	fnErr := errors.New("boom")
	ft = &fakeTransport{logout: logoutErr}
	client = NewClient(ft, Credentials{}, nil)
	err = client.WithSession(context.Background(), func(*Session) error { return fnErr })
	assert.ErrorIs(t, err, fnErr)
	assert.Equal(t, 1, ft.logouts)
}

func TestWithSession_LogoutOnPanic(t *testing.T) {
	ft := &fakeTransport{}
	client := NewClient(ft, Credentials{}, nil)

	assert.Panics(t, func() {
		_ = client.WithSession(context.Background(), func(*Session) error {
			panic("template exploded")
		})
	})
	assert.Equal(t, 1, ft.logouts)
}

func TestSession_UnusableAfterRelease(t *testing.T) {
	ft := &fakeTransport{}
	client := NewClient(ft, Credentials{}, nil)

	var leaked *Session
	require.NoError(t, client.WithSession(context.Background(), func(s *Session) error {
		leaked = s
		return nil
	}))

	_, err := leaked.FetchAll(context.Background(), ListRequest{Module: "Accounts"})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestHashPassword(t *testing.T) {
	assert.Equal(t, "5f4dcc3b5aa765d61d8327deb882cf99", HashPassword("password"))
	assert.Len(t, HashPassword(""), 32)
}
