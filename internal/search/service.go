// Package search is the use-case layer: it answers "what does this medicine
// cost" by combining the local catalog with live retailer mining, and keeps
// the audit trail of who asked what.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"medbuscador/internal"
	"medbuscador/internal/catalog"
	"medbuscador/internal/scrape"
	"medbuscador/internal/storage"
	"medbuscador/internal/util"
)

var ErrEmptyQuery = errors.New("empty query")

// WebFetcher is the live-mining side of a search. Satisfied by
// scrape.Orchestrator.
type WebFetcher interface {
	FetchOnline(ctx context.Context, query string, selected []string) ([]internal.Record, []scrape.SourceResult)
}

// Auditor records completed searches. Satisfied by storage.Store.
type Auditor interface {
	RecordRun(ctx context.Context, run storage.Run) error
}

type Service struct {
	logger *zap.Logger
	base   catalog.Repository
	extra  catalog.Repository
	web    WebFetcher
	audit  Auditor
}

func NewService(logger *zap.Logger, base, extra catalog.Repository, web WebFetcher, audit Auditor) *Service {
	return &Service{logger: logger, base: base, extra: extra, web: web, audit: audit}
}

type Request struct {
	Query string               `json:"query"`
	Mode  internal.SearchMode  `json:"mode"`
	Scope internal.SearchScope `json:"scope"`
	// Pharmacies limits the live pass to the named retailers; empty means all.
	Pharmacies []string `json:"pharmacies"`
}

type Response struct {
	Records   []internal.Record     `json:"records"`
	Sources   []scrape.SourceResult `json:"-"`
	FromBase  int                   `json:"fromBase"`
	FromWeb   int                   `json:"fromWeb"`
	ElapsedMs int64                 `json:"elapsedMs"`
}

// Catalog returns the merged BASE+EXTRA record list, derived columns filled.
func (s *Service) Catalog() []internal.Record {
	return catalog.Merge(s.base.LoadAll(), s.extra.LoadAll())
}

// Search runs one query for one user. Mode picks the sides (catalog, web or
// both); scope picks which catalog columns the query is matched against.
// Catalog rows always come before web rows. The audit write is best-effort.
func (s *Service) Search(ctx context.Context, user internal.User, req Request) (Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Response{}, ErrEmptyQuery
	}
	if req.Mode == "" {
		req.Mode = internal.ModeBoth
	}
	if req.Scope == "" {
		req.Scope = internal.ScopeBoth
	}

	start := time.Now()
	resp := Response{Records: []internal.Record{}}

	if req.Mode == internal.ModeBase || req.Mode == internal.ModeBoth {
		matches := matchCatalog(s.Catalog(), query, req.Scope)
		resp.FromBase = len(matches)
		resp.Records = append(resp.Records, matches...)
	}

	if (req.Mode == internal.ModeWeb || req.Mode == internal.ModeBoth) && s.web != nil {
		webRecords, sources := s.web.FetchOnline(ctx, query, req.Pharmacies)
		resp.Sources = sources
		resp.FromWeb = len(webRecords)
		resp.Records = append(resp.Records, webRecords...)
	}

	resp.ElapsedMs = time.Since(start).Milliseconds()

	if s.audit != nil {
		run := storage.Run{
			Username: user.Username,
			Query:    query,
			Mode:     string(req.Mode),
			Hits:     len(resp.Records),
			Elapsed:  resp.ElapsedMs,
		}
		if err := s.audit.RecordRun(ctx, run); err != nil {
			s.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	s.logger.Info("search completed",
		zap.String("user", user.Username),
		zap.String("query", query),
		zap.String("mode", string(req.Mode)),
		zap.Int("base_hits", resp.FromBase),
		zap.Int("web_hits", resp.FromWeb),
		zap.Int64("elapsed_ms", resp.ElapsedMs))
	return resp, nil
}

func matchCatalog(records []internal.Record, query string, scope internal.SearchScope) []internal.Record {
	needle := util.UpperClean(query)
	out := []internal.Record{}
	for _, rec := range records {
		if matchesScope(rec, needle, scope) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesScope(rec internal.Record, needle string, scope internal.SearchScope) bool {
	inProduct := strings.Contains(rec.ProductName, needle)
	inIngredient := strings.Contains(rec.ActiveIngredient, needle)
	switch scope {
	case internal.ScopeProduct:
		return inProduct
	case internal.ScopeIngredient:
		return inIngredient
	default:
		return inProduct || inIngredient
	}
}

// Row CRUD below operates on the BASE catalog only; the EXTRA file is an
// import source, not something users edit in place.

func (s *Service) Rows() []internal.Record {
	return s.base.LoadAll()
}

func (s *Service) AddRow(rec internal.Record) error {
	rec = sanitizeRow(rec)
	if rec.ProductName == "" {
		return errors.New("product name required")
	}
	rows := append(s.base.LoadAll(), rec)
	return s.base.ReplaceAll(rows)
}

func (s *Service) UpdateRow(index int, rec internal.Record) error {
	rows := s.base.LoadAll()
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("row %d out of range", index)
	}
	rec = sanitizeRow(rec)
	if rec.ProductName == "" {
		return errors.New("product name required")
	}
	rec.Origin = rows[index].Origin
	rows[index] = rec
	return s.base.ReplaceAll(rows)
}

func (s *Service) DeleteRow(index int) error {
	rows := s.base.LoadAll()
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("row %d out of range", index)
	}
	rows = append(rows[:index], rows[index+1:]...)
	return s.base.ReplaceAll(rows)
}

// ImportInto replaces a catalog with an uploaded table, normalized the same
// way a file on disk would be. Returns how many rows were recognized.
func ImportInto(repo catalog.Repository, table catalog.Table, profile catalog.SourceProfile) (int, error) {
	records := catalog.Normalize(table, profile)
	if len(records) == 0 {
		return 0, errors.New("no rows recognized in upload")
	}
	if err := repo.ReplaceAll(records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func sanitizeRow(rec internal.Record) internal.Record {
	rec.ProductCode = util.UpperClean(rec.ProductCode)
	rec.ProductName = util.UpperClean(rec.ProductName)
	rec.ActiveIngredient = util.UpperClean(rec.ActiveIngredient)
	rec.RegistryID = util.UpperClean(rec.RegistryID)
	rec.Manufacturer = util.UpperClean(rec.Manufacturer)
	rec.Presentation = util.UpperClean(rec.Presentation)
	rec.Price = util.CleanCell(rec.Price)
	rec.SourceName = util.CleanCell(rec.SourceName)
	rec.Link = util.CleanCell(rec.Link)
	rec.Group = util.UpperClean(rec.Group)
	rec.ManufacturerAbbrev = util.CleanCell(rec.ManufacturerAbbrev)
	rec.SecondaryPriceLabel = util.CleanCell(rec.SecondaryPriceLabel)
	if rec.Origin == "" {
		rec.Origin = internal.OriginBase
	}
	rec.SyncIdentity()
	return rec
}
