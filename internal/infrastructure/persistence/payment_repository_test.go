package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/eventos/backend/internal/domain/billing"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentRepository creates a GormPaymentRepository with a mocked SQL connection
func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &GormPaymentRepository{db: gormDB}, mock, mockDB
}

func paymentColumns() []string {
	return []string{"id", "created_at", "updated_at", "version", "tenant_id", "quote_id", "amount", "currency", "payment_date", "method", "reference", "notes", "is_cancelled"}
}

func TestGormPaymentRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds payment within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		tenantID := uuid.New()
		quoteID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(paymentColumns()).
			AddRow(paymentID, now, now, 1, tenantID, quoteID, decimal.NewFromInt(5000), "MXN", now, "TRANSFER", "SPEI-123", "", false)

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1 AND tenant_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(paymentID, tenantID, 1).
			WillReturnRows(rows)

		payment, err := repo.FindByIDForTenant(context.Background(), tenantID, paymentID)

		assert.NoError(t, err)
		require.NotNil(t, payment)
		assert.Equal(t, paymentID, payment.ID)
		assert.Equal(t, quoteID, payment.QuoteID)
		assert.Equal(t, billing.PaymentMethodTransfer, payment.Method)
		assert.True(t, payment.Amount.Equals(valueobject.NewMoneyMXN(decimal.NewFromInt(5000))))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1 AND tenant_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(paymentID, tenantID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		payment, err := repo.FindByIDForTenant(context.Background(), tenantID, paymentID)

		assert.NoError(t, err)
		assert.Nil(t, payment)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_FindByQuote(t *testing.T) {
	t.Run("returns payments ordered by payment date", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		quoteID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(paymentColumns()).
			AddRow(uuid.New(), now, now, 1, tenantID, quoteID, decimal.NewFromInt(3000), "MXN", now.AddDate(0, 0, -2), "CASH", "", "", false).
			AddRow(uuid.New(), now, now, 1, tenantID, quoteID, decimal.NewFromInt(2000), "MXN", now, "CARD", "", "", true)

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE tenant_id = \$1 AND quote_id = \$2 ORDER BY payment_date ASC, created_at ASC`).
			WithArgs(tenantID, quoteID).
			WillReturnRows(rows)

		payments, err := repo.FindByQuote(context.Background(), tenantID, quoteID)

		assert.NoError(t, err)
		require.Len(t, payments, 2)
		assert.False(t, payments[0].IsCancelled)
		assert.True(t, payments[1].IsCancelled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_List(t *testing.T) {
	t.Run("excludes cancelled payments by default", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "payments" WHERE tenant_id = \$1 AND is_cancelled = false`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows(paymentColumns()).
			AddRow(uuid.New(), now, now, 1, tenantID, uuid.New(), decimal.NewFromInt(1500), "MXN", now, "CASH", "", "", false)

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE tenant_id = \$1 AND is_cancelled = false ORDER BY created_at DESC LIMIT .*`).
			WithArgs(tenantID, 20).
			WillReturnRows(rows)

		result, err := repo.List(context.Background(), tenantID, shared.DefaultFilter())

		assert.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		require.Len(t, result.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters by method", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		filter := shared.DefaultFilter()
		filter.Filters["method"] = "TRANSFER"

		mock.ExpectQuery(`SELECT count\(\*\) FROM "payments" WHERE tenant_id = \$1 AND method = \$2 AND is_cancelled = false`).
			WithArgs(tenantID, "TRANSFER").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE tenant_id = \$1 AND method = \$2 AND is_cancelled = false ORDER BY created_at DESC LIMIT .*`).
			WithArgs(tenantID, "TRANSFER", 20).
			WillReturnRows(sqlmock.NewRows(paymentColumns()))

		result, err := repo.List(context.Background(), tenantID, filter)

		assert.NoError(t, err)
		assert.Empty(t, result.Items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_Save(t *testing.T) {
	t.Run("saves payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		payment, err := billing.NewPayment(tenantID, uuid.New(), valueobject.NewMoneyMXN(decimal.NewFromInt(2500)), time.Now(), billing.PaymentMethodCash, "", "")
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), payment)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_Delete(t *testing.T) {
	t.Run("deletes payment row", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		mock.ExpectExec(`DELETE FROM "payments" WHERE id = \$1`).
			WithArgs(paymentID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), paymentID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements PaymentRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		var _ billing.PaymentRepository = repo
	})
}
