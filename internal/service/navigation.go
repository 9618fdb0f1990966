package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"spectra/internal/domain"
	"spectra/internal/lookup"
)

var (
	// ErrUnknownPage is returned by Navigate for an id not in the tree.
	ErrUnknownPage = errors.New("unknown page")
	// ErrPageBusy is returned while a previous load of the same page runs.
	ErrPageBusy = errors.New("page is still loading")
)

// RowFetcher is the slice of the data-access wrapper the DB-backed pages use.
type RowFetcher interface {
	FetchAll(ctx context.Context, query string, params []any) ([]domain.Row, error)
}

// NameResolver maps product ids to display names.
type NameResolver interface {
	Resolve(ctx context.Context, key int64) string
}

// pageLoader fills a DB-backed page.
type pageLoader func(ctx context.Context, db RowFetcher) ([]domain.Row, error)

// pageTree is the navigation tree in display order.
var pageTree = []domain.Page{
	{ID: "measurement", Title: "Measurement"},
	{ID: "spectrum", Title: "Live Spectrum", ParentID: "measurement"},
	{ID: "calibration", Title: "Calibration", ParentID: "measurement"},
	{ID: "dark-current", Title: "Dark Current", ParentID: "measurement"},
	{ID: "analysis", Title: "Analysis"},
	{ID: "peaks", Title: "Peak Detection", ParentID: "analysis"},
	{ID: "baseline", Title: "Baseline Correction", ParentID: "analysis"},
	{ID: "comparison", Title: "Spectrum Comparison", ParentID: "analysis"},
	{ID: "library", Title: "Reference Library", ParentID: "analysis"},
	{ID: "data", Title: "Data"},
	{ID: "products", Title: "Products", ParentID: "data", NeedsDB: true},
	{ID: "samples", Title: "Sample Selection", ParentID: "data", NeedsDB: true},
	{ID: "export", Title: "Export", ParentID: "data"},
	{ID: "system", Title: "System"},
	{ID: "database", Title: "Database", ParentID: "system"},
	{ID: "instrument", Title: "Instrument", ParentID: "system"},
	{ID: "about", Title: "About", ParentID: "system"},
}

// NavigationService dispatches page ids to their content. Most pages are
// placeholders; DB-backed pages share the one data-access client.
type NavigationService struct {
	emitter EventEmitter
	samples *SampleService
	names   NameResolver
	loaders map[string]pageLoader
	guard   loadGuard

	mu sync.Mutex
	db RowFetcher
}

// NewNavigationService creates the shell router. samples and names may be nil.
func NewNavigationService(samples *SampleService, names NameResolver, emitter EventEmitter) *NavigationService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	n := &NavigationService{emitter: emitter, samples: samples, names: names}
	n.loaders = map[string]pageLoader{
		"products": loadProducts,
		"samples":  n.loadSamples,
	}
	return n
}

// SetDB installs (or replaces) the client handed to DB-backed pages.
func (n *NavigationService) SetDB(db RowFetcher) {
	n.mu.Lock()
	n.db = db
	n.mu.Unlock()
}

// Pages returns the navigation tree in display order.
func (n *NavigationService) Pages() []domain.Page {
	out := make([]domain.Page, len(pageTree))
	copy(out, pageTree)
	return out
}

// Navigate builds the view for page id. Data failures end up in the view's
// Error field rather than the returned error.
func (n *NavigationService) Navigate(ctx context.Context, id string) (*domain.PageView, error) {
	page, ok := findPage(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, id)
	}
	view := &domain.PageView{Page: page}

	load, hasLoader := n.loaders[id]
	if !hasLoader {
		view.Placeholder = page.Title + " is not available yet."
		n.emitter.Emit(ctx, EventPageLoaded, id)
		return view, nil
	}

	if !n.guard.TryLock(id) {
		return nil, fmt.Errorf("%w: %s", ErrPageBusy, id)
	}
	defer n.guard.Unlock(id)

	n.mu.Lock()
	db := n.db
	n.mu.Unlock()
	if page.NeedsDB && db == nil {
		view.Error = "no database connection configured"
		n.emitter.Emit(ctx, EventPageLoaded, id)
		return view, nil
	}

	rows, err := load(ctx, db)
	if err != nil {
		log.Printf("[APP] load page %s: %v", id, err)
		view.Error = err.Error()
	}
	view.Rows = rows
	n.emitter.Emit(ctx, EventPageLoaded, id)
	return view, nil
}

// Wait blocks until in-flight page loads finish or ctx is done.
func (n *NavigationService) Wait(ctx context.Context) {
	n.guard.WaitAll(ctx)
}

func findPage(id string) (domain.Page, bool) {
	for _, p := range pageTree {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Page{}, false
}

func loadProducts(ctx context.Context, db RowFetcher) ([]domain.Row, error) {
	return db.FetchAll(ctx, `SELECT id, name FROM product WHERE ac_nmb = ? ORDER BY name`, []any{1})
}

// loadSamples lists the current sample selection with product names
// resolved through the lookup cache.
func (n *NavigationService) loadSamples(ctx context.Context, _ RowFetcher) ([]domain.Row, error) {
	if n.samples == nil {
		return nil, nil
	}
	cols := []string{"id", "product_id", "product", "from", "to"}
	var rows []domain.Row
	for _, r := range n.samples.Rows() {
		name := r.ProductText
		if n.names != nil {
			if resolved := n.names.Resolve(ctx, r.ProductID); resolved != lookup.Sentinel {
				name = resolved
			}
		}
		rows = append(rows, domain.NewRow(cols, []any{
			r.ID, r.ProductID, name,
			r.DateFrom + " " + r.TimeFrom,
			r.DateTo + " " + r.TimeTo,
		}))
	}
	return rows, nil
}
