// Package memory implementa los repositorios del equilibrado en memoria. Se usa en tests de casos
// de uso y de handlers, y como almacenamiento de demostración de la CLI.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Equilibrio-api/internal/domain"
	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
)

// Verify interface compliance
var (
	_ repository.SnapshotRepository = (*Store)(nil)
	_ repository.SalesRepository    = (*Store)(nil)
	_ repository.ProposalRepository = (*Store)(nil)
	_ repository.StockRepository    = (*Store)(nil)
	_ repository.TransferRepository = (*Store)(nil)
	_ repository.LocationRepository = (*locationRepo)(nil)
)

type stockKey struct {
	locationID string
	articleID  string
}

type state struct {
	locations     map[string]entity.Location
	categories    map[string]entity.Category
	subCategories map[string]entity.SubCategory
	articles      map[string]entity.Article
	stock         map[stockKey]entity.StockRecord
	stockOrder    []stockKey
	sales         []entity.SalesRecord
	proposals     map[string]entity.TransferProposal
	transfers     []entity.CompletedTransfer
}

func newState() *state {
	return &state{
		locations:     make(map[string]entity.Location),
		categories:    make(map[string]entity.Category),
		subCategories: make(map[string]entity.SubCategory),
		articles:      make(map[string]entity.Article),
		stock:         make(map[stockKey]entity.StockRecord),
		proposals:     make(map[string]entity.TransferProposal),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.subCategories {
		c.subCategories[k] = v
	}
	for k, v := range s.articles {
		c.articles[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	c.stockOrder = append(c.stockOrder, s.stockOrder...)
	c.sales = append(c.sales, s.sales...)
	for k, v := range s.proposals {
		c.proposals[k] = v
	}
	c.transfers = append(c.transfers, s.transfers...)
	return c
}

// Store almacén en memoria seguro para uso concurrente. Run serializa las transacciones y
// trabaja sobre una copia del estado que solo se publica si fn termina sin error.
type Store struct {
	mu        sync.Mutex
	st        *state
	failures  map[string]error
	commitErr error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState(), failures: make(map[string]error)}
}

// ── Datos de prueba ──────────────────────────────────────────────────────────

// AddLocation registra una tienda.
func (s *Store) AddLocation(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.locations[id] = entity.Location{ID: id, Name: name, CreatedAt: time.Now()}
}

// AddCategory registra una categoría.
func (s *Store) AddCategory(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.categories[id] = entity.Category{ID: id, Name: name}
}

// AddSubCategory registra una subcategoría de categoryID.
func (s *Store) AddSubCategory(id, categoryID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.subCategories[id] = entity.SubCategory{ID: id, CategoryID: categoryID, Name: name}
}

// AddArticle registra un artículo.
func (s *Store) AddArticle(a entity.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.articles[a.ID] = a
}

// PutStock inserta o reemplaza un registro de stock. El orden de inserción es el orden del snapshot.
func (s *Store) PutStock(r entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := stockKey{locationID: r.LocationID, articleID: r.ArticleID}
	if _, ok := s.st.stock[k]; !ok {
		s.st.stockOrder = append(s.st.stockOrder, k)
	}
	s.st.stock[k] = r
}

// AddSale registra una venta mensual.
func (s *Store) AddSale(r entity.SalesRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.sales = append(s.st.sales, r)
}

// Stock devuelve el registro de stock actual.
func (s *Store) Stock(locationID, articleID string) (entity.StockRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.st.stock[stockKey{locationID: locationID, articleID: articleID}]
	return r, ok
}

// Proposal devuelve una copia de la propuesta, o nil si no existe.
func (s *Store) Proposal(id string) *entity.TransferProposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.proposals[id]
	if !ok {
		return nil
	}
	return &p
}

// CompletedTransfers devuelve las transferencias registradas en orden de inserción.
func (s *Store) CompletedTransfers() []entity.CompletedTransfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.CompletedTransfer(nil), s.st.transfers...)
}

// FailOn hace que la operación op (nombre del método del repositorio) devuelva err. nil la restablece.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// FailCommitWith simula un commit con resultado desconocido en la próxima transacción:
// los cambios se publican pero Run devuelve err envuelto en domain.ErrCommitUncertain.
func (s *Store) FailCommitWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

// ── Transacciones ────────────────────────────────────────────────────────────

// Run ejecuta fn con repositorios atados a una copia del estado.
func (s *Store) Run(ctx context.Context, fn func(
	proposals repository.ProposalRepository,
	stock repository.StockRepository,
	transfers repository.TransferRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	tx := &txRepo{st: s.st.clone(), failures: s.failures}
	if err := fn(tx, tx, tx); err != nil {
		return err
	}
	s.st = tx.st
	if s.commitErr != nil {
		err := s.commitErr
		s.commitErr = nil
		return fmt.Errorf("commit transaction: %w: %w", domain.ErrCommitUncertain, err)
	}
	return nil
}

func (s *Store) repo() *txRepo {
	return &txRepo{st: s.st, failures: s.failures}
}

// ── Repositorios fuera de transacción ────────────────────────────────────────

func (s *Store) LoadSnapshot(ctx context.Context) ([]entity.SnapshotRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().LoadSnapshot(ctx)
}

func (s *Store) ListSince(ctx context.Context, since time.Time) ([]entity.SalesRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListSince(ctx, since)
}

func (s *Store) ListPending(ctx context.Context) ([]*entity.ProposalView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListPending(ctx)
}

func (s *Store) ListHistory(ctx context.Context, limit, offset int) ([]*entity.ProposalView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListHistory(ctx, limit, offset)
}

func (s *Store) GetByID(ctx context.Context, id string) (*entity.TransferProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().GetByID(ctx, id)
}

func (s *Store) DeletePending(ctx context.Context, keepIDs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().DeletePending(ctx, keepIDs)
}

func (s *Store) InsertBatch(ctx context.Context, proposals []*entity.TransferProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().InsertBatch(ctx, proposals)
}

func (s *Store) Transition(ctx context.Context, id string, to entity.ProposalStatus, at time.Time) (*entity.TransferProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().Transition(ctx, id, to, at)
}

func (s *Store) GetForUpdate(ctx context.Context, locationID, articleID string) (*entity.StockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().GetForUpdate(ctx, locationID, articleID)
}

func (s *Store) UpdateQuantity(ctx context.Context, locationID, articleID string, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().UpdateQuantity(ctx, locationID, articleID, quantity)
}

func (s *Store) Create(ctx context.Context, t *entity.CompletedTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().Create(ctx, t)
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]*entity.CompletedTransferView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().List(ctx, limit, offset)
}

// Locations devuelve el catálogo de tiendas como LocationRepository.
func (s *Store) Locations() repository.LocationRepository {
	return &locationRepo{s: s}
}

type locationRepo struct {
	s *Store
}

func (r *locationRepo) List(ctx context.Context) ([]*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.repo().ListLocations(ctx)
}

// ── txRepo: operaciones sobre un estado ya bloqueado ─────────────────────────

type txRepo struct {
	st       *state
	failures map[string]error
}

func (r *txRepo) fail(op string) error {
	if err, ok := r.failures[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *txRepo) LoadSnapshot(_ context.Context) ([]entity.SnapshotRow, error) {
	if err := r.fail("LoadSnapshot"); err != nil {
		return nil, err
	}
	rows := make([]entity.SnapshotRow, 0, len(r.st.stockOrder))
	for _, k := range r.st.stockOrder {
		rec := r.st.stock[k]
		row := entity.SnapshotRow{StockRecord: rec}
		if loc, ok := r.st.locations[rec.LocationID]; ok {
			row.LocationName = loc.Name
		}
		if a, ok := r.st.articles[rec.ArticleID]; ok {
			row.ArticleCode = a.Code
			row.ArticleName = a.Name
			row.CategoryID = a.CategoryID
			row.SubCategoryID = a.SubCategoryID
			if c, ok := r.st.categories[a.CategoryID]; ok {
				row.CategoryName = c.Name
			}
			if sc, ok := r.st.subCategories[a.SubCategoryID]; ok {
				row.SubCategoryName = sc.Name
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *txRepo) ListSince(_ context.Context, since time.Time) ([]entity.SalesRecord, error) {
	if err := r.fail("ListSince"); err != nil {
		return nil, err
	}
	var out []entity.SalesRecord
	for _, s := range r.st.sales {
		if !s.Month.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *txRepo) view(p entity.TransferProposal) *entity.ProposalView {
	v := &entity.ProposalView{TransferProposal: p}
	if a, ok := r.st.articles[p.ArticleID]; ok {
		v.ArticleCode = a.Code
		v.ArticleName = a.Name
	}
	v.SourceLocationName = r.st.locations[p.SourceLocationID].Name
	v.DestinationLocationName = r.st.locations[p.DestinationLocationID].Name
	return v
}

func (r *txRepo) ListPending(_ context.Context) ([]*entity.ProposalView, error) {
	if err := r.fail("ListPending"); err != nil {
		return nil, err
	}
	var out []*entity.ProposalView
	for _, p := range r.st.proposals {
		if p.Status == entity.ProposalPending {
			out = append(out, r.view(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].GeneratedAt.After(out[j].GeneratedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *txRepo) ListHistory(_ context.Context, limit, offset int) ([]*entity.ProposalView, error) {
	if err := r.fail("ListHistory"); err != nil {
		return nil, err
	}
	var out []*entity.ProposalView
	for _, p := range r.st.proposals {
		if p.Status != entity.ProposalPending {
			out = append(out, r.view(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := resolvedAt(out[i]), resolvedAt(out[j])
		if !ri.Equal(rj) {
			return ri.After(rj)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}

func resolvedAt(v *entity.ProposalView) time.Time {
	if v.ResolvedAt == nil {
		return time.Time{}
	}
	return *v.ResolvedAt
}

func (r *txRepo) GetByID(_ context.Context, id string) (*entity.TransferProposal, error) {
	if err := r.fail("GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.st.proposals[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *txRepo) DeletePending(_ context.Context, keepIDs []string) (int64, error) {
	if err := r.fail("DeletePending"); err != nil {
		return 0, err
	}
	keep := make(map[string]struct{}, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = struct{}{}
	}
	var n int64
	for id, p := range r.st.proposals {
		if p.Status != entity.ProposalPending {
			continue
		}
		if _, ok := keep[id]; ok {
			continue
		}
		delete(r.st.proposals, id)
		n++
	}
	return n, nil
}

func (r *txRepo) InsertBatch(_ context.Context, proposals []*entity.TransferProposal) error {
	if err := r.fail("InsertBatch"); err != nil {
		return err
	}
	for _, p := range proposals {
		if _, exists := r.st.proposals[p.ID]; exists {
			return fmt.Errorf("propuesta %s: %w", p.ID, domain.ErrConflict)
		}
		r.st.proposals[p.ID] = *p
	}
	return nil
}

func (r *txRepo) Transition(_ context.Context, id string, to entity.ProposalStatus, at time.Time) (*entity.TransferProposal, error) {
	if err := r.fail("Transition"); err != nil {
		return nil, err
	}
	p, ok := r.st.proposals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Status != entity.ProposalPending {
		return nil, domain.ErrProposalNotPending
	}
	p.Status = to
	p.ResolvedAt = &at
	r.st.proposals[id] = p
	return &p, nil
}

func (r *txRepo) GetForUpdate(_ context.Context, locationID, articleID string) (*entity.StockRecord, error) {
	if err := r.fail("GetForUpdate"); err != nil {
		return nil, err
	}
	rec, ok := r.st.stock[stockKey{locationID: locationID, articleID: articleID}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *txRepo) UpdateQuantity(_ context.Context, locationID, articleID string, quantity int64) error {
	if err := r.fail("UpdateQuantity"); err != nil {
		return err
	}
	k := stockKey{locationID: locationID, articleID: articleID}
	rec, ok := r.st.stock[k]
	if !ok {
		return domain.ErrNotFound
	}
	rec.QuantityOnHand = quantity
	rec.UpdatedAt = time.Now()
	r.st.stock[k] = rec
	return nil
}

func (r *txRepo) Create(_ context.Context, t *entity.CompletedTransfer) error {
	if err := r.fail("Create"); err != nil {
		return err
	}
	r.st.transfers = append(r.st.transfers, *t)
	return nil
}

func (r *txRepo) List(_ context.Context, limit, offset int) ([]*entity.CompletedTransferView, error) {
	if err := r.fail("ListTransfers"); err != nil {
		return nil, err
	}
	out := make([]*entity.CompletedTransferView, 0, len(r.st.transfers))
	for i := len(r.st.transfers) - 1; i >= 0; i-- {
		t := r.st.transfers[i]
		v := &entity.CompletedTransferView{CompletedTransfer: t}
		if a, ok := r.st.articles[t.ArticleID]; ok {
			v.ArticleCode = a.Code
			v.ArticleName = a.Name
		}
		v.SourceLocationName = r.st.locations[t.SourceLocationID].Name
		v.DestinationLocationName = r.st.locations[t.DestinationLocationID].Name
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *txRepo) ListLocations(_ context.Context) ([]*entity.Location, error) {
	if err := r.fail("ListLocations"); err != nil {
		return nil, err
	}
	out := make([]*entity.Location, 0, len(r.st.locations))
	for _, l := range r.st.locations {
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
