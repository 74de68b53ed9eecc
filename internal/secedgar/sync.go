package secedgar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
	"toppharma/internal/present"
)

// Source is the part of Client that Sync reads from.
type Source interface {
	LookupCIK(ctx context.Context, ticker string) (string, error)
	Submissions(ctx context.Context, cik string) (*Submissions, error)
	CompanyFacts(ctx context.Context, cik string) (*CompanyFacts, error)
}

// Sync actions recorded per ticker
const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
	ActionSkipped = "skipped"
	ActionFailed  = "failed"
)

// SyncOptions select the filers to sync. No tickers means KnownCIKs.
type SyncOptions struct {
	Tickers []string
	DryRun  bool
}

// CompanyReport describes what Sync found and did for one ticker.
type CompanyReport struct {
	Ticker       string     `json:"ticker"`
	CIK          string     `json:"cik,omitempty"`
	Name         string     `json:"name,omitempty"`
	SIC          string     `json:"sic,omitempty"`
	Action       string     `json:"action"`
	Reason       string     `json:"reason,omitempty"`
	LatestAnnual *Filing    `json:"latest_annual,omitempty"`
	Financials   Financials `json:"financials"`
}

type SyncResult struct {
	Added     int             `json:"added"`
	Updated   int             `json:"updated"`
	Skipped   int             `json:"skipped"`
	Failed    int             `json:"failed"`
	Companies []CompanyReport `json:"companies"`
}

// Syncer upserts SEC filers into the company directory. Known companies
// (matched on stock symbol) get revenue and headcount from their latest
// 10-K; new pharma filers are inserted. Filers outside PharmaSICCodes are
// skipped. A failing ticker is reported and does not stop the run.
type Syncer struct {
	src       Source
	companies repositories.CompanyRepository
	logger    *slog.Logger
	now       func() time.Time
}

func NewSyncer(src Source, companies repositories.CompanyRepository, logger *slog.Logger) *Syncer {
	return &Syncer{src: src, companies: companies, logger: logger, now: time.Now}
}

func (s *Syncer) Run(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	tickers := normalizeTickers(opts.Tickers)
	res := &SyncResult{}

	for _, ticker := range tickers {
		report, err := s.syncOne(ctx, ticker, opts.DryRun)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			s.logger.Error("SEC sync failed", "ticker", ticker, "error", err)
			report.Action = ActionFailed
			report.Reason = err.Error()
		}

		switch report.Action {
		case ActionAdded:
			res.Added++
		case ActionUpdated:
			res.Updated++
		case ActionSkipped:
			res.Skipped++
		default:
			res.Failed++
		}
		res.Companies = append(res.Companies, report)
	}

	s.logger.Info("SEC sync complete",
		"tickers", len(tickers),
		"added", res.Added,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"dry_run", opts.DryRun,
	)
	return res, nil
}

func (s *Syncer) syncOne(ctx context.Context, ticker string, dryRun bool) (CompanyReport, error) {
	report := CompanyReport{Ticker: ticker}

	cik, err := s.src.LookupCIK(ctx, ticker)
	if err != nil {
		return report, err
	}
	report.CIK = cik

	var (
		sub   *Submissions
		facts *CompanyFacts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sub, err = s.src.Submissions(gctx, cik)
		return err
	})
	g.Go(func() error {
		var err error
		facts, err = s.src.CompanyFacts(gctx, cik)
		return err
	})
	if err := g.Wait(); err != nil {
		return report, err
	}

	report.Name = sub.Name
	report.SIC = sub.SIC
	report.LatestAnnual = sub.LatestFiling("10-K")
	report.Financials = ExtractFinancials(facts)

	if !IsPharmaSIC(sub.SIC) {
		report.Action = ActionSkipped
		report.Reason = fmt.Sprintf("SIC %s (%s) is not pharma or biotech", sub.SIC, sub.SICDescription)
		return report, nil
	}

	known, err := s.companies.LastUpdatedBySymbol(ctx, []string{ticker})
	if err != nil {
		return report, fmt.Errorf("look up company: %w", err)
	}
	_, exists := known[ticker]

	if dryRun {
		report.Action = ActionAdded
		if exists {
			report.Action = ActionUpdated
		}
		return report, nil
	}

	now := s.now().UTC()
	fin := companyFinancials(report.Financials, now)
	if exists {
		if err := s.companies.UpdateFinancials(ctx, ticker, fin); err != nil {
			return report, fmt.Errorf("update company: %w", err)
		}
		report.Action = ActionUpdated
		return report, nil
	}

	company := newCompany(sub, ticker, fin, now)
	if err := s.companies.Insert(ctx, company); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			report.Action = ActionSkipped
			report.Reason = "a company with slug " + company.Slug + " already exists"
			return report, nil
		}
		return report, fmt.Errorf("insert company: %w", err)
	}
	report.Action = ActionAdded
	return report, nil
}

func companyFinancials(f Financials, now time.Time) models.CompanyFinancials {
	out := models.CompanyFinancials{UpdatedAt: now}
	if f.Revenue != nil && f.Revenue.Unit == "USD" {
		v := f.Revenue.Value
		out.RevenueUSD = &v
	}
	if f.Employees != nil && f.Employees.Value > 0 {
		n := int(f.Employees.Value)
		out.EmployeeCount = &n
	}
	return out
}

// newCompany builds a directory row from a filer. EDGAR names are upper
// case ("MODERNA INC"), so they are title-cased for display.
func newCompany(sub *Submissions, ticker string, fin models.CompanyFinancials, now time.Time) *models.Company {
	name := present.Title(strings.ToLower(sub.Name))
	symbol := ticker
	c := &models.Company{
		Name:          name,
		Slug:          fmt.Sprintf("%s-%s", present.Slug(name), strings.ToLower(ticker)),
		EmployeeCount: fin.EmployeeCount,
		RevenueUSD:    fin.RevenueUSD,
		PublicCompany: true,
		StockSymbol:   &symbol,
		Ticker:        &symbol,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if exchange := sub.ExchangeFor(ticker); exchange != "" {
		c.StockExchange = &exchange
	}
	return c
}

func normalizeTickers(tickers []string) []string {
	if len(tickers) == 0 {
		for t := range KnownCIKs {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
		return tickers
	}
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
