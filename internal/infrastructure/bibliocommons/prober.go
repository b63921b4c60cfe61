package bibliocommons

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/library-availability/internal/config"
	"github.com/library-availability/internal/domain"
)

// Vendor - идентификатор поставщика каталога в справочнике систем
const Vendor = "bibliocommons"

const (
	recordLinkSelector = `a[href*="/v2/record/S"]`
	noResultsSelector  = `.cp-search-no-results, .cp-no-results, [data-key="no-results"]`
	summarySelector    = `div.cp-circulation-info`
	tableSelector      = `div.cp-item-availability-table`
)

var toggleCaptions = []string{"Check availability", "Availability"}

// Timeouts - ожидания отдельных шагов проверки
type Timeouts struct {
	NoResults time.Duration
	Record    time.Duration
	Summary   time.Duration
	Table     time.Duration
	Settle    time.Duration
}

// TimeoutsFromConfig берёт ожидания из конфигурации
func TimeoutsFromConfig(cfg *config.ProbeConfig) Timeouts {
	return Timeouts{
		NoResults: cfg.NoResultsTimeout,
		Record:    cfg.RecordTimeout,
		Summary:   cfg.SummaryTimeout,
		Table:     cfg.TableTimeout,
		Settle:    cfg.SettleDelay,
	}
}

// Prober проверяет наличие книги в каталогах BiblioCommons
type Prober struct {
	sessions SessionFactory
	timeouts Timeouts
	logger   *zap.Logger
}

// NewProber создает Prober
func NewProber(sessions SessionFactory, timeouts Timeouts, logger *zap.Logger) *Prober {
	return &Prober{
		sessions: sessions,
		timeouts: timeouts,
		logger:   logger,
	}
}

func (p *Prober) Vendor() string {
	return Vendor
}

// Check ищет ISBN в каталоге системы и читает наличие экземпляров по филиалам.
// Каждая проверка работает в собственной сессии браузера.
func (p *Prober) Check(ctx context.Context, system domain.CatalogSystem, isbn string) (*domain.AvailabilityResult, error) {
	isbn = domain.NormalizeISBN(isbn)
	base := baseURL(system)

	sess, err := p.sessions.NewSession(ctx)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer sess.Close()

	searchURL := fmt.Sprintf("%s/v2/search?query=%s&searchType=smart", base, url.QueryEscape(isbn))
	if err := sess.Navigate(ctx, searchURL); err != nil {
		return nil, classify(ctx, fmt.Errorf("open search page: %w", err))
	}

	recordID, err := p.findRecord(ctx, sess)
	if err != nil {
		return nil, classify(ctx, err)
	}
	if recordID == "" {
		p.logger.Debug("ISBN not in catalog",
			zap.String("system", string(system.ID)),
			zap.String("isbn", isbn))
		return domain.NewNotFoundResult(system.ID, isbn), nil
	}

	if err := sess.Navigate(ctx, fmt.Sprintf("%s/v2/record/%s", base, recordID)); err != nil {
		return nil, classify(ctx, fmt.Errorf("open record page: %w", err))
	}

	summary, err := p.readSummary(ctx, sess)
	if err != nil {
		return nil, classify(ctx, err)
	}

	locations, err := p.readLocations(ctx, sess)
	if err != nil {
		return nil, classify(ctx, err)
	}

	return &domain.AvailabilityResult{
		SystemID:           system.ID,
		ISBN:               isbn,
		RecordID:           recordID,
		IsAvailable:        len(locations) > 0 || summary.Copies > 0,
		AvailableLocations: locations,
		Summary:            summary,
	}, nil
}

type linkResult struct {
	href string
	err  error
}

// findRecord ждёт либо признака пустой выдачи, либо ссылки на запись.
// Пустая строка без ошибки - книги в каталоге нет.
func (p *Prober) findRecord(ctx context.Context, sess Session) (string, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	noResults := make(chan error, 1)
	link := make(chan linkResult, 1)

	go func() {
		noResults <- sess.WaitVisible(raceCtx, noResultsSelector, p.timeouts.NoResults)
	}()
	go func() {
		if err := sess.WaitAttached(raceCtx, recordLinkSelector, p.timeouts.Record); err != nil {
			link <- linkResult{err: err}
			return
		}
		href, _, err := sess.AttributeValue(raceCtx, recordLinkSelector, "href")
		link <- linkResult{href: href, err: err}
	}()

	var failure error
	for pending := 2; pending > 0; pending-- {
		select {
		case err := <-noResults:
			noResults = nil
			if err == nil {
				return "", nil
			}
			if !errors.Is(err, ErrWaitTimeout) {
				failure = err
			}
		case r := <-link:
			link = nil
			if r.err == nil {
				if id := recordIDFromHref(r.href); id != "" {
					return id, nil
				}
				continue
			}
			if !errors.Is(r.err, ErrWaitTimeout) {
				failure = r.err
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if failure != nil {
		return "", fmt.Errorf("search results: %w", failure)
	}
	// Ни один признак не появился: считаем, что книги нет
	return "", nil
}

func (p *Prober) readSummary(ctx context.Context, sess Session) (domain.AvailabilitySummary, error) {
	if err := sess.WaitVisible(ctx, summarySelector, p.timeouts.Summary); err != nil {
		if errors.Is(err, ErrWaitTimeout) {
			return domain.AvailabilitySummary{}, nil
		}
		return domain.AvailabilitySummary{}, fmt.Errorf("wait summary: %w", err)
	}

	html, err := sess.InnerHTML(ctx, summarySelector)
	if err != nil {
		return domain.AvailabilitySummary{}, fmt.Errorf("read summary: %w", err)
	}

	return ParseSummary(html)
}

func (p *Prober) readLocations(ctx context.Context, sess Session) ([]string, error) {
	if err := sess.ScrollToBottom(ctx); err != nil {
		return nil, fmt.Errorf("scroll: %w", err)
	}
	if err := settle(ctx, p.timeouts.Settle); err != nil {
		return nil, err
	}

	clicked, err := sess.ClickButton(ctx, toggleCaptions)
	if err != nil {
		return nil, fmt.Errorf("click availability toggle: %w", err)
	}
	if clicked {
		if err := settle(ctx, p.timeouts.Settle); err != nil {
			return nil, err
		}
	}

	if err := sess.WaitAttached(ctx, tableSelector, p.timeouts.Table); err != nil {
		if errors.Is(err, ErrWaitTimeout) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("wait availability table: %w", err)
	}

	html, err := sess.InnerHTML(ctx, tableSelector)
	if err != nil {
		return nil, fmt.Errorf("read availability table: %w", err)
	}

	return ParseAvailableLocations(html)
}

func baseURL(system domain.CatalogSystem) string {
	if system.BaseURL != "" {
		return strings.TrimRight(system.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.bibliocommons.com", strings.ToLower(string(system.ID)))
}

// recordIDFromHref берёт последний сегмент пути ссылки на запись
func recordIDFromHref(href string) string {
	if u, err := url.Parse(href); err == nil {
		href = u.Path
	}
	href = strings.TrimRight(href, "/")
	if idx := strings.LastIndex(href, "/"); idx >= 0 {
		href = href[idx+1:]
	}
	return strings.TrimSpace(href)
}

// classify сводит ошибку к таймауту или сбою проверки
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrProbeTimeout, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrProbeFault, err)
}

func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
