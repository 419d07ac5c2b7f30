// Package guide is the caller-facing fair guide service. It wires the CRM
// client, normalization, asset resolution, rendering and compilation into
// the operations used by the HTTP server and the CLI.
package guide

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/fairguide/internal/assets"
	"github.com/jonathan/fairguide/internal/companies"
	"github.com/jonathan/fairguide/internal/crm"
	"github.com/jonathan/fairguide/internal/logger"
	"github.com/jonathan/fairguide/internal/rendering"
)

const (
	// AccountsModule is the CRM module holding exhibitor accounts.
	AccountsModule = "Accounts"

	// ParticipantsQuery selects the accounts taking part in the fair.
	ParticipantsQuery = "accounts_cstm.messeteilnahme_c = 1"

	// OrderByName orders accounts by display name.
	OrderByName = "accounts.name"
)

// ErrNotFound is returned when a requested company id has no CRM record.
var ErrNotFound = errors.New("company not found")

// AssetResolver resolves company assets to local files.
type AssetResolver interface {
	Resolve(ctx context.Context, companyName string, kind assets.Kind) (companies.AssetRef, error)
}

// Compiler turns LaTeX markup into a PDF.
type Compiler interface {
	Compile(ctx context.Context, markup string) ([]byte, error)
}

// Service holds the dependencies of every guide operation. It is built once
// at startup and shared by all requests.
type Service struct {
	crm        *crm.Client
	normalizer *companies.Normalizer
	assets     AssetResolver
	renderer   *rendering.Renderer
	compiler   Compiler
	log        *logger.Logger
}

// Options lists the collaborators of a Service.
type Options struct {
	CRM        *crm.Client
	Normalizer *companies.Normalizer
	Assets     AssetResolver
	Renderer   *rendering.Renderer
	Compiler   Compiler
	Logger     *logger.Logger
}

// NewService creates a service. All collaborators except the logger are required.
func NewService(opts Options) (*Service, error) {
	switch {
	case opts.CRM == nil:
		return nil, errors.New("guide: CRM client is required")
	case opts.Normalizer == nil:
		return nil, errors.New("guide: normalizer is required")
	case opts.Assets == nil:
		return nil, errors.New("guide: asset resolver is required")
	case opts.Renderer == nil:
		return nil, errors.New("guide: renderer is required")
	case opts.Compiler == nil:
		return nil, errors.New("guide: compiler is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		crm:        opts.CRM,
		normalizer: opts.Normalizer,
		assets:     opts.Assets,
		renderer:   opts.Renderer,
		compiler:   opts.Compiler,
		log:        log.With("component", "guide"),
	}, nil
}

// Listings is the ordered company overview.
type Listings []companies.Listing

// Map returns the overview as a name to id map. Duplicate names keep the
// last id, like the ordered list they come from.
func (l Listings) Map() map[string]string {
	m := make(map[string]string, len(l))
	for _, item := range l {
		m[item.Name] = item.ID
	}
	return m
}

// GetCompanies lists all participating companies ordered by name.
func (s *Service) GetCompanies(ctx context.Context) (Listings, error) {
	rows, err := s.crm.FetchAll(ctx, crm.ListRequest{
		Module:  AccountsModule,
		Query:   ParticipantsQuery,
		OrderBy: OrderByName,
		Fields:  []string{"name", "id"},
	})
	if err != nil {
		return nil, err
	}

	listings := make(Listings, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, companies.Listing{Name: row.Get("name"), ID: row.Get("id")})
	}
	return listings, nil
}

// GetCompany fetches one company record. It returns nil and no error when
// the CRM has no account with that id.
func (s *Service) GetCompany(ctx context.Context, id string) (*companies.Company, error) {
	if !ValidID(id) {
		s.log.Debug("rejected malformed company id", "id", id)
		return nil, nil
	}
	rows, err := s.crm.FetchAll(ctx, crm.ListRequest{
		Module:  AccountsModule,
		Query:   IDQuery(id),
		OrderBy: OrderByName,
		Fields:  s.normalizer.Fields(),
	})
	if err != nil {
		return nil, err
	}

	company, ok := s.normalizer.First(rows)
	if !ok {
		s.log.Debug("company not found", "id", id)
		return nil, nil
	}
	return company, nil
}

// GetParticipants fetches the full records of all participating companies
// in a single session, ordered by name.
func (s *Service) GetParticipants(ctx context.Context) ([]companies.Company, error) {
	rows, err := s.crm.FetchAll(ctx, crm.ListRequest{
		Module:  AccountsModule,
		Query:   ParticipantsQuery,
		OrderBy: OrderByName,
		Fields:  s.normalizer.Fields(),
	})
	if err != nil {
		return nil, err
	}

	result := make([]companies.Company, 0, len(rows))
	for _, row := range rows {
		result = append(result, s.normalizer.Normalize(row))
	}
	return result, nil
}

// accountID matches CRM account ids: GUIDs, or short numeric ids.
var accountID = regexp.MustCompile(`^[0-9a-fA-F-]{1,36}$`)

// ValidID reports whether id can name a CRM account. Anything else cannot
// match a row and is treated as not found without querying the CRM.
func ValidID(id string) bool {
	return accountID.MatchString(id)
}

// IDQuery builds the query selecting one account. Backslashes are escaped
// and single quotes doubled so the id cannot end the string literal.
func IDQuery(id string) string {
	id = strings.ReplaceAll(id, `\`, `\\`)
	id = strings.ReplaceAll(id, "'", "''")
	return fmt.Sprintf("accounts.id = '%s'", id)
}

// ResolveAssets fills in the logo of c and, when it booked an ad, the ad page.
// Download failures are returned as they are; missing assets are not errors.
func (s *Service) ResolveAssets(ctx context.Context, c *companies.Company) error {
	logo, err := s.assets.Resolve(ctx, c.Name, assets.KindLogo)
	if err != nil {
		return err
	}
	c.Logo = logo

	if c.HasAd {
		ad, err := s.assets.Resolve(ctx, c.Name, assets.KindAd)
		if err != nil {
			return err
		}
		c.Ad = ad
	}
	return nil
}

// Collect fetches the given companies and resolves their assets, keeping
// the order of ids. A missing id fails the whole call with ErrNotFound.
func (s *Service) Collect(ctx context.Context, ids ...string) ([]companies.Company, error) {
	result := make([]companies.Company, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetCompany(ctx, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := s.ResolveAssets(ctx, c); err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, nil
}

// RenderTeX returns the LaTeX markup for the given companies.
func (s *Service) RenderTeX(ctx context.Context, ids ...string) (string, error) {
	cs, err := s.Collect(ctx, ids...)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(cs...)
}

// Render renders and compiles records whose assets are already resolved.
func (s *Service) Render(ctx context.Context, cs ...companies.Company) ([]byte, error) {
	markup, err := s.renderer.Render(cs...)
	if err != nil {
		return nil, err
	}
	pdf, err := s.compiler.Compile(ctx, markup)
	if err != nil {
		return nil, err
	}
	s.log.Info("rendered guide pages", "companies", len(cs), "bytes", len(pdf))
	return pdf, nil
}

// RenderCompany produces the PDF page of one company.
func (s *Service) RenderCompany(ctx context.Context, id string) ([]byte, error) {
	return s.RenderCompanies(ctx, id)
}

// RenderCompanies produces one PDF with a page per company, in id order.
func (s *Service) RenderCompanies(ctx context.Context, ids ...string) ([]byte, error) {
	cs, err := s.Collect(ctx, ids...)
	if err != nil {
		return nil, err
	}
	return s.Render(ctx, cs...)
}

// RenderGuide produces the complete guide with every participating company.
func (s *Service) RenderGuide(ctx context.Context) ([]byte, error) {
	cs, err := s.GetParticipants(ctx)
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 {
		return nil, fmt.Errorf("%w: no participating companies", ErrNotFound)
	}
	for i := range cs {
		if err := s.ResolveAssets(ctx, &cs[i]); err != nil {
			return nil, err
		}
	}
	return s.Render(ctx, cs...)
}
