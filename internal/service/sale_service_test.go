package service

import (
	"bytes"
	"context"
	"testing"

	"backoffice/internal/dto"
	"backoffice/internal/model"
	"backoffice/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubQueue struct{ jobs []worker.EmailJobPayload }

func (q *stubQueue) EnqueueEmail(_ context.Context, p worker.EmailJobPayload) error {
	q.jobs = append(q.jobs, p)
	return nil
}

func strPtr(s string) *string { return &s }

func TestRecordSale_EndToEndScenario(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	p := f.products.add("HLM-10", 0, "0", "9")

	receive(t, f, p.ID.String(), 10, "5", nil)
	receive(t, f, p.ID.String(), 10, "7", nil)

	sale, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID:     p.ID.String(),
		Quantity:      5,
		SellingPrice:  d("9"),
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)

	assert.True(t, sale.CostAtSale.Equal(d("6")))
	assert.True(t, sale.Profit.Equal(d("15")))
	assert.True(t, sale.Revenue.Equal(d("45")))
	require.NotNil(t, sale.RemainingQuantity)
	assert.Equal(t, 15, *sale.RemainingQuantity)
	assert.Equal(t, 15, f.products.get(p.ID).Quantity)
	assert.Nil(t, sale.BankTransactionID)
	assert.Empty(t, f.bankRepo.txns)
}

func TestRecordSale_CostBasisIsLocked(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	p := f.products.add("HLM-11", 0, "0", "9")
	receive(t, f, p.ID.String(), 10, "6", nil)

	sale, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 5, SellingPrice: d("9"), PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)

	// A later, pricier batch moves the average but not the recorded sale.
	receive(t, f, p.ID.String(), 5, "12", nil)
	assert.True(t, f.products.get(p.ID).AverageCost.Equal(d("9")))

	id, _ := uuid.Parse(sale.ID)
	stored, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.CostAtSale.Equal(d("6")))
	assert.True(t, stored.Profit.Equal(d("15")))
}

func TestRecordSale_TransferPostsDeposit(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	p := f.products.add("HLM-12", 10, "4", "10")
	acct := f.bankRepo.addAccount("Main")

	sale, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID:     p.ID.String(),
		Quantity:      3,
		SellingPrice:  d("10"),
		PaymentMethod: model.PaymentTransfer,
		BankAccountID: strPtr(acct.ID.String()),
		Reference:     strPtr("INV-77"),
	})
	require.NoError(t, err)

	require.Len(t, f.bankRepo.txns, 1)
	txn := f.bankRepo.txns[0]
	assert.Equal(t, model.DirectionIn, txn.Direction)
	assert.Equal(t, model.CategorySale, txn.Category)
	assert.True(t, txn.Amount.Equal(d("30")))
	assert.Equal(t, "Sale Ref: INV-77", txn.Description)
	assert.True(t, f.bankRepo.balance(acct.ID).Equal(d("30")))

	require.NotNil(t, sale.BankTransactionID)
	assert.Equal(t, txn.ID.String(), *sale.BankTransactionID)
}

func TestRecordSale_TransferWithoutReferenceSaysNA(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	p := f.products.add("HLM-13", 10, "4", "10")
	acct := f.bankRepo.addAccount("Main")

	_, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 1, SellingPrice: d("10"),
		PaymentMethod: model.PaymentTransfer, BankAccountID: strPtr(acct.ID.String()),
	})
	require.NoError(t, err)
	require.Len(t, f.bankRepo.txns, 1)
	assert.Equal(t, "Sale Ref: N/A", f.bankRepo.txns[0].Description)
}

func TestRecordSale_TransferRequiresAccount(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	p := f.products.add("HLM-14", 10, "4", "10")

	_, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 1, SellingPrice: d("10"), PaymentMethod: model.PaymentTransfer,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "bank_account_id")
	assert.Empty(t, f.sales.sales)
	assert.Equal(t, 10, f.products.get(p.ID).Quantity)
}

func TestRecordSale_OversellClampsToZero(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	p := f.products.add("HLM-15", 3, "4", "10")

	sale, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 5, SellingPrice: d("10"), PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, *sale.RemainingQuantity)
	assert.Equal(t, 0, f.products.get(p.ID).Quantity)
	assert.Equal(t, 5, sale.Quantity)
	assert.True(t, sale.Profit.Equal(d("30")))

	require.Len(t, f.movements.movements, 1)
	assert.Equal(t, -3, f.movements.movements[0].Delta)
	assert.Contains(t, f.movements.movements[0].Note, "oversold by 2")
}

func TestRecordSale_OversellRejected(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellReject, nil)
	p := f.products.add("HLM-16", 3, "4", "10")

	_, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 5, SellingPrice: d("10"), PaymentMethod: model.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, f.products.get(p.ID).Quantity)
	assert.Empty(t, f.sales.sales)
	assert.Empty(t, f.movements.movements)
}

func TestRecordSale_LowStockAlertQueued(t *testing.T) {
	f := newFixture()
	q := &stubQueue{}
	svc := f.saleService(OversellClamp, q)
	p := f.products.add("HLM-17", 8, "4", "10") // reorder level 5

	_, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 2, SellingPrice: d("10"), PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	assert.Empty(t, q.jobs)

	_, err = svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 1, SellingPrice: d("10"), PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, "owner@example.com", q.jobs[0].ToEmail)
	assert.Contains(t, q.jobs[0].Subject, "HLM-17")

	// Already below the level: no second alert.
	_, err = svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 1, SellingPrice: d("10"), PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	assert.Len(t, q.jobs, 1)
}

func TestRecordSale_UnknownProduct(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	_, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: uuid.NewString(), Quantity: 1, SellingPrice: d("1"), PaymentMethod: model.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteReceiptPDF(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	p := f.products.add("HLM-18", 4, "4", "10")
	sale, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 2, SellingPrice: d("10"), PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	id, _ := uuid.Parse(sale.ID)
	require.NoError(t, svc.WriteReceiptPDF(context.Background(), id, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	assert.ErrorIs(t, svc.WriteReceiptPDF(context.Background(), uuid.New(), &buf), ErrNotFound)
}

func TestListSales_IncludesTotals(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	p := f.products.add("HLM-19", 10, "4", "10")
	for i := 0; i < 2; i++ {
		_, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
			ProductID: p.ID.String(), Quantity: 2, SellingPrice: d("10"), PaymentMethod: model.PaymentCash,
		})
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background(), dto.SaleFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.True(t, list.Revenue.Equal(d("40")))
	assert.True(t, list.Profit.Equal(d("24")))
}

func TestRecordSale_FreeTransferPostsNothing(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	p := f.products.add("HLM-20", 10, "4", "10")
	acct := f.bankRepo.addAccount("Main")

	sale, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 2, SellingPrice: d("0"),
		PaymentMethod: model.PaymentTransfer, BankAccountID: strPtr(acct.ID.String()),
	})
	require.NoError(t, err)
	assert.True(t, sale.Profit.Equal(d("-8")))
	assert.Nil(t, sale.BankTransactionID)
	assert.Empty(t, f.bankRepo.txns)
	assert.Equal(t, 8, f.products.get(p.ID).Quantity)
}

func TestRecordSale_SubCentPriceRejected(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	p := f.products.add("HLM-21", 10, "6", "10")

	_, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 5, SellingPrice: d("9.994"), PaymentMethod: model.PaymentCash,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "selling_price")
	assert.Equal(t, 10, f.products.get(p.ID).Quantity)
	assert.Empty(t, f.sales.sales)
}

func TestRecordSale_UnknownAccountWritesNothing(t *testing.T) {
	f := newFixture()
	svc := f.saleService(OversellClamp, nil)
	p := f.products.add("HLM-22", 10, "6", "10")

	_, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 3, SellingPrice: d("10"),
		PaymentMethod: model.PaymentTransfer, BankAccountID: strPtr(uuid.NewString()),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "bank_account_id")
	assert.Equal(t, 10, f.products.get(p.ID).Quantity)
	assert.Empty(t, f.sales.sales)
	assert.Empty(t, f.movements.movements)
}
