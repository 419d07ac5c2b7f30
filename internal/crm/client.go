package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/fairguide/internal/logger"
)

// logoutTimeout bounds the logout call made while releasing a session.
const logoutTimeout = 10 * time.Second

// Client opens scoped sessions against a Transport.
type Client struct {
	transport Transport
	creds     Credentials
	log       *logger.Logger
}

// NewClient creates a client. A nil logger discards log output.
func NewClient(transport Transport, creds Credentials, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		transport: transport,
		creds:     creds,
		log:       log.With("component", "crm"),
	}
}

// Session is an authenticated CRM session. It is only valid inside the
// function passed to Client.WithSession.
type Session struct {
	id        string
	transport Transport
	log       *logger.Logger
}

// WithSession logs in, runs fn and logs out again. The logout happens on every
// exit path, including a panic in fn. A logout failure is returned only when fn
// itself succeeded.
func (c *Client) WithSession(ctx context.Context, fn func(*Session) error) (err error) {
	id, err := c.transport.Login(ctx, c.creds)
	if err != nil {
		return err
	}
	c.log.Debug("session opened")

	s := &Session{id: id, transport: c.transport, log: c.log}
	defer func() {
		logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
		defer cancel()

		if logoutErr := s.release(logoutCtx); logoutErr != nil {
			c.log.Warn("logout failed", "error", logoutErr)
			if err == nil {
				err = logoutErr
			}
			return
		}
		c.log.Debug("session closed")
	}()

	return fn(s)
}

// FetchAll runs a full paginated query inside its own session.
func (c *Client) FetchAll(ctx context.Context, req ListRequest) ([]Row, error) {
	var rows []Row
	err := c.WithSession(ctx, func(s *Session) error {
		var err error
		rows, err = s.FetchAll(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchAll requests pages until the server answers with a zero result count.
// The offset of each request is the next_offset cursor of the previous page;
// the server decides the page size.
func (s *Session) FetchAll(ctx context.Context, req ListRequest) ([]Row, error) {
	if s.id == "" {
		return nil, ErrNoSession
	}

	rows := []Row{}
	offset := 0
	pages := 0
	for {
		page, err := s.transport.GetEntryList(ctx, s.id, req, offset)
		if err != nil {
			s.log.Debug("entry list request failed", "module", req.Module, "offset", offset, "error", err)
			return nil, err
		}
		pages++
		if page.ResultCount == 0 {
			break
		}
		rows = append(rows, page.Entries...)

		if page.NextOffset <= offset {
			return nil, fmt.Errorf("%w: offset %d, next_offset %d", ErrStalledCursor, offset, page.NextOffset)
		}
		offset = page.NextOffset
	}

	s.log.Debug("fetched entry list", "module", req.Module, "rows", len(rows), "requests", pages)
	return rows, nil
}

func (s *Session) release(ctx context.Context) error {
	if s.id == "" {
		return ErrNoSession
	}
	id := s.id
	s.id = ""
	return s.transport.Logout(ctx, id)
}
