package service

import (
	"context"
	"sort"
	"time"

	"backoffice/internal/dto"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repositories. Services run with a nil *gorm.DB, so runTx calls
// straight through and every *Tx method receives tx == nil.

// ── Products ─────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(sku string, qty int, avg, price string) *model.Product {
	p := &model.Product{
		ID:           uuid.New(),
		SKU:          sku,
		Name:         "Helmet " + sku,
		AverageCost:  decimal.RequireFromString(avg),
		SellingPrice: decimal.RequireFromString(price),
		Quantity:     qty,
		ReorderLevel: defaultReorderLevel,
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) get(id uuid.UUID) *model.Product { return r.products[id] }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if filter.LowStock && !p.IsLowStock() {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListLowStock(ctx context.Context) ([]model.Product, error) {
	out, _, err := r.List(ctx, dto.ProductFilter{LowStock: true})
	return out, err
}

func (r *stubProductRepo) Totals(_ context.Context) (repository.InventoryTotals, error) {
	t := repository.InventoryTotals{Value: decimal.Zero}
	for _, p := range r.products {
		t.Products++
		t.Stock += int64(p.Quantity)
		t.Value = t.Value.Add(p.AverageCost.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return t, nil
}

func (r *stubProductRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) SetStockTx(_ *gorm.DB, id uuid.UUID, quantity int, averageCost decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Quantity, p.AverageCost = quantity, averageCost
	return nil
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Quantity = max(p.Quantity+delta, 0)
	return nil
}

func (r *stubProductRepo) UpdateTx(_ *gorm.DB, p *model.Product) error {
	stored, ok := r.products[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Name, stored.Brand, stored.Model = p.Name, p.Brand, p.Model
	stored.Size, stored.Color = p.Size, p.Color
	stored.SellingPrice, stored.ReorderLevel = p.SellingPrice, p.ReorderLevel
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// ── Receipts, movements, cost history ───────────────────────────────────────

type stubReceiptRepo struct {
	receipts map[uuid.UUID]*model.StockReceipt
}

var _ repository.StockReceiptRepository = (*stubReceiptRepo)(nil)

func newStubReceiptRepo() *stubReceiptRepo {
	return &stubReceiptRepo{receipts: make(map[uuid.UUID]*model.StockReceipt)}
}

func (r *stubReceiptRepo) CreateTx(_ *gorm.DB, rec *model.StockReceipt) error {
	rec.ID = uuid.New()
	cp := *rec
	r.receipts[rec.ID] = &cp
	return nil
}

func (r *stubReceiptRepo) LinkTransactionTx(_ *gorm.DB, id, txnID uuid.UUID) error {
	if rec, ok := r.receipts[id]; ok && rec.BankTransactionID == nil {
		rec.BankTransactionID = &txnID
	}
	return nil
}

func (r *stubReceiptRepo) List(_ context.Context, _ repository.ReceiptFilter) ([]model.StockReceipt, int64, error) {
	var out []model.StockReceipt
	for _, rec := range r.receipts {
		out = append(out, *rec)
	}
	return out, int64(len(out)), nil
}

type stubMovementRepo struct{ movements []model.StockMovement }

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	m.ID = uuid.New()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, f repository.MovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

type stubCostHistoryRepo struct{ rows []model.CostHistory }

var _ repository.CostHistoryRepository = (*stubCostHistoryRepo)(nil)

func (r *stubCostHistoryRepo) CreateTx(_ *gorm.DB, h *model.CostHistory) error {
	h.ID = uuid.New()
	h.CreatedAt = time.Now()
	r.rows = append(r.rows, *h)
	return nil
}

func (r *stubCostHistoryRepo) ListByProduct(_ context.Context, id uuid.UUID, _, _ int) ([]model.CostHistory, int64, error) {
	var out []model.CostHistory
	for _, h := range r.rows {
		if h.ProductID == id {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}

// ── Sales ────────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales    map[uuid.UUID]*model.Sale
	products *stubProductRepo
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

func newStubSaleRepo(products *stubProductRepo) *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale), products: products}
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) LinkTransactionTx(_ *gorm.DB, id, txnID uuid.UUID) error {
	if s, ok := r.sales[id]; ok && s.BankTransactionID == nil {
		s.BankTransactionID = &txnID
	}
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Product = r.products.get(s.ProductID)
	return &cp, nil
}

func (r *stubSaleRepo) List(_ context.Context, _ repository.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) Totals(_ context.Context, filter repository.SaleFilter) (repository.SaleTotals, error) {
	t := repository.SaleTotals{Revenue: decimal.Zero, Profit: decimal.Zero}
	for _, s := range r.sales {
		day := s.CreatedAt.UTC().Format("2006-01-02")
		if (filter.From != "" && day < filter.From) || (filter.To != "" && day > filter.To) {
			continue
		}
		t.Count++
		t.Revenue = t.Revenue.Add(s.Revenue())
		t.Profit = t.Profit.Add(s.Profit)
	}
	return t, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

// ── Bank ─────────────────────────────────────────────────────────────────────

type stubBankRepo struct {
	accounts map[uuid.UUID]*model.BankAccount
	txns     []*model.BankTransaction
	// failInsert makes CreateTransactionTx fail, to exercise error paths.
	failInsert error
}

var _ repository.BankRepository = (*stubBankRepo)(nil)

func newStubBankRepo() *stubBankRepo {
	return &stubBankRepo{accounts: make(map[uuid.UUID]*model.BankAccount)}
}

func (r *stubBankRepo) addAccount(name string) *model.BankAccount {
	a := &model.BankAccount{ID: uuid.New(), Name: name, Balance: decimal.Zero}
	r.accounts[a.ID] = a
	return a
}

func (r *stubBankRepo) CreateAccountTx(_ *gorm.DB, a *model.BankAccount) error {
	a.ID = uuid.New()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *stubBankRepo) FindAccountByID(_ context.Context, id uuid.UUID) (*model.BankAccount, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubBankRepo) FindAccountByName(_ context.Context, name string) (*model.BankAccount, error) {
	for _, a := range r.accounts {
		if a.Name == name {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBankRepo) ListAccounts(_ context.Context) ([]model.BankAccount, error) {
	var out []model.BankAccount
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubBankRepo) CreateTransactionTx(_ *gorm.DB, t *model.BankTransaction) error {
	if r.failInsert != nil {
		return r.failInsert
	}
	t.ID = uuid.New()
	cp := *t
	r.txns = append(r.txns, &cp)
	return nil
}

func (r *stubBankRepo) ApplyBalanceTx(_ *gorm.DB, id uuid.UUID, signed decimal.Decimal) error {
	a, ok := r.accounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Balance = a.Balance.Add(signed)
	return nil
}

func (r *stubBankRepo) FindTransactionByID(_ context.Context, id uuid.UUID) (*model.BankTransaction, error) {
	for _, t := range r.txns {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBankRepo) FindTransactionForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.BankTransaction, error) {
	return r.FindTransactionByID(context.Background(), id)
}

func (r *stubBankRepo) HasReversalTx(_ *gorm.DB, id uuid.UUID) (bool, error) {
	for _, t := range r.txns {
		if t.ReversalOfID != nil && *t.ReversalOfID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubBankRepo) ListTransactions(_ context.Context, f repository.TransactionFilter) ([]model.BankTransaction, int64, error) {
	var out []model.BankTransaction
	for _, t := range r.txns {
		if f.BankAccountID != nil && t.BankAccountID != *f.BankAccountID {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubBankRepo) RecentTransactions(_ context.Context, limit int) ([]model.BankTransaction, error) {
	var out []model.BankTransaction
	for i := len(r.txns) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.txns[i])
	}
	return out, nil
}

func (r *stubBankRepo) SumLedger(_ context.Context, id uuid.UUID) (repository.LedgerSums, error) {
	s := repository.LedgerSums{TotalIn: decimal.Zero, TotalOut: decimal.Zero}
	for _, t := range r.txns {
		if t.BankAccountID != id {
			continue
		}
		if t.Direction == model.DirectionIn {
			s.TotalIn = s.TotalIn.Add(t.Amount)
		} else {
			s.TotalOut = s.TotalOut.Add(t.Amount)
		}
	}
	return s, nil
}

func (r *stubBankRepo) DB() *gorm.DB { return nil }

func (r *stubBankRepo) balance(id uuid.UUID) decimal.Decimal { return r.accounts[id].Balance }

// ── Drawings ─────────────────────────────────────────────────────────────────

type stubDrawingRepo struct {
	drawings map[uuid.UUID]*model.OwnerDrawing
}

var _ repository.DrawingRepository = (*stubDrawingRepo)(nil)

func newStubDrawingRepo() *stubDrawingRepo {
	return &stubDrawingRepo{drawings: make(map[uuid.UUID]*model.OwnerDrawing)}
}

func (r *stubDrawingRepo) CreateTx(_ *gorm.DB, d *model.OwnerDrawing) error {
	d.ID = uuid.New()
	cp := *d
	r.drawings[d.ID] = &cp
	return nil
}

func (r *stubDrawingRepo) FindByID(_ context.Context, id uuid.UUID) (*model.OwnerDrawing, error) {
	d, ok := r.drawings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *stubDrawingRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.OwnerDrawing, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubDrawingRepo) LinkTransactionTx(_ *gorm.DB, id, txnID uuid.UUID) error {
	if d, ok := r.drawings[id]; ok && d.BankTransactionID == nil {
		d.BankTransactionID = &txnID
	}
	return nil
}

func (r *stubDrawingRepo) List(_ context.Context) ([]model.OwnerDrawing, error) {
	var out []model.OwnerDrawing
	for _, d := range r.drawings {
		out = append(out, *d)
	}
	return out, nil
}

func (r *stubDrawingRepo) Total(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, d := range r.drawings {
		total = total.Add(d.Amount)
	}
	return total, nil
}

func (r *stubDrawingRepo) DB() *gorm.DB { return nil }

// ── Historical sales ─────────────────────────────────────────────────────────

type stubHistoricalRepo struct{ rows []model.HistoricalSale }

var _ repository.HistoricalSaleRepository = (*stubHistoricalRepo)(nil)

func (r *stubHistoricalRepo) Create(_ context.Context, h *model.HistoricalSale) error {
	h.ID = uuid.New()
	r.rows = append(r.rows, *h)
	return nil
}

func (r *stubHistoricalRepo) CreateBatchTx(_ *gorm.DB, rows []model.HistoricalSale) error {
	for i := range rows {
		rows[i].ID = uuid.New()
	}
	r.rows = append(r.rows, rows...)
	return nil
}

func (r *stubHistoricalRepo) List(_ context.Context, _ repository.HistoricalSaleFilter) ([]model.HistoricalSale, int64, error) {
	return r.rows, int64(len(r.rows)), nil
}

func (r *stubHistoricalRepo) Totals(_ context.Context, _ repository.HistoricalSaleFilter) (repository.SaleTotals, error) {
	t := repository.SaleTotals{Revenue: decimal.Zero, Profit: decimal.Zero}
	for _, h := range r.rows {
		t.Count++
		t.Revenue = t.Revenue.Add(h.Revenue())
		t.Profit = t.Profit.Add(h.Profit)
	}
	return t, nil
}

func (r *stubHistoricalRepo) DB() *gorm.DB { return nil }

// ── Users ────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username || (u.Email != nil && *u.Email == username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if u, ok := r.users[id]; ok {
		u.Active = active
	}
	return nil
}

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	products   *stubProductRepo
	receipts   *stubReceiptRepo
	movements  *stubMovementRepo
	history    *stubCostHistoryRepo
	sales      *stubSaleRepo
	bankRepo   *stubBankRepo
	drawings   *stubDrawingRepo
	historical *stubHistoricalRepo

	bank      BankService
	inventory InventoryService
}

func newFixture() *fixture {
	f := &fixture{
		products:   newStubProductRepo(),
		receipts:   newStubReceiptRepo(),
		movements:  &stubMovementRepo{},
		history:    &stubCostHistoryRepo{},
		bankRepo:   newStubBankRepo(),
		drawings:   newStubDrawingRepo(),
		historical: &stubHistoricalRepo{},
	}
	f.sales = newStubSaleRepo(f.products)
	f.bank = NewBankService(f.bankRepo, nil, "USD")
	f.inventory = NewInventoryService(f.products, f.receipts, f.movements, f.history, f.bank, nil)
	return f
}

func (f *fixture) saleService(policy OversellPolicy, queue *stubQueue) SaleService {
	opts := SaleOptions{Policy: policy, NotifyEmail: "owner@example.com", BusinessName: "Helmet Shop", Currency: "USD"}
	if queue == nil {
		return NewSaleService(f.sales, f.products, f.movements, f.bank, nil, nil, opts)
	}
	return NewSaleService(f.sales, f.products, f.movements, f.bank, nil, queue, opts)
}
