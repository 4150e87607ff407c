package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"digitwin/internal/core"
	"digitwin/internal/log"
	"digitwin/internal/plaid"
	"digitwin/internal/storage"
)

const providerDateLayout = "2006-01-02"

// errProviderDisabled is returned when the service runs without Plaid
// credentials. The bank endpoints stay registered but answer 502.
var errProviderDisabled = errors.New("bank integration not configured")

// ImportService links bank accounts through Plaid and pulls their
// transactions into the local ledger. Imports are idempotent: the
// provider's transaction id doubles as the local primary key, so
// replaying a window inserts nothing twice.
type ImportService struct {
	repo       *storage.Repository
	provider   plaid.Provider
	windowDays int
	logger     *log.Logger
}

func NewImportService(repo *storage.Repository, provider plaid.Provider, windowDays int, logger *log.Logger) *ImportService {
	return &ImportService{
		repo:       repo,
		provider:   provider,
		windowDays: windowDays,
		logger:     logger.WithComponent(log.ComponentImport),
	}
}

func (s *ImportService) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	if s.provider == nil {
		return "", &core.ProviderError{Op: "create link token", Err: errProviderDisabled}
	}
	token, err := s.provider.CreateLinkToken(ctx, userID)
	if err != nil {
		return "", &core.ProviderError{Op: "create link token", Err: err}
	}
	return token, nil
}

// ExchangePublicToken trades a Link public token for a durable access
// token and stores it. Re-linking the same bank item refreshes the
// stored token instead of duplicating it.
func (s *ImportService) ExchangePublicToken(ctx context.Context, userID, publicToken string) (string, error) {
	if s.provider == nil {
		return "", &core.ProviderError{Op: "exchange public token", Err: errProviderDisabled}
	}
	itemID, accessToken, err := s.provider.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return "", &core.ProviderError{Op: "exchange public token", Err: err}
	}

	item := storage.PlaidItem{
		ItemID:      itemID,
		UserID:      userID,
		AccessToken: accessToken,
		Status:      "active",
	}
	if err := s.repo.UpsertPlaidItem(ctx, item); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "linked bank item",
		log.FieldUserID, userID,
		log.FieldItemID, itemID)

	return itemID, nil
}

// Sync fetches the trailing window of transactions for every linked
// item and inserts the ones not seen before. Returns how many new
// records were stored.
func (s *ImportService) Sync(ctx context.Context, userID string) (int, error) {
	if s.provider == nil {
		return 0, &core.ProviderError{Op: "sync transactions", Err: errProviderDisabled}
	}
	items, err := s.repo.ListPlaidItems(ctx, userID)
	if err != nil {
		return 0, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -s.windowDays)

	imported := 0
	for _, item := range items {
		txns, err := s.provider.FetchTransactions(ctx, item.AccessToken, start, end)
		if err != nil {
			return imported, &core.ProviderError{Op: "fetch transactions", Err: err}
		}

		for _, pt := range txns {
			t, err := s.toTransaction(userID, pt)
			if err != nil {
				s.logger.WarnContext(ctx, "skipping malformed provider transaction",
					log.FieldUserID, userID,
					log.FieldError, err)
				continue
			}
			inserted, err := s.repo.InsertTransaction(ctx, t)
			if err != nil {
				return imported, err
			}
			if inserted {
				imported++
			}
		}
	}

	s.logger.InfoContext(ctx, "synced provider transactions",
		log.FieldUserID, userID,
		log.FieldCount, imported)

	return imported, nil
}

// toTransaction normalizes a provider record into the local ledger
// convention: spending negative, income positive. Plaid reports debits
// as positive amounts, so the sign flips here.
func (s *ImportService) toTransaction(userID string, pt plaid.Transaction) (core.Transaction, error) {
	date, err := time.Parse(providerDateLayout, pt.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	cents := decimal.NewFromFloat(pt.Amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	category := core.DefaultCategory
	if len(pt.Category) > 0 && pt.Category[0] != "" {
		category = pt.Category[0]
	}

	name := pt.Name
	if name == "" {
		name = pt.MerchantName
	}

	return core.Transaction{
		ID:       pt.ID,
		UserID:   userID,
		Name:     name,
		Amount:   core.Money{Cents: -cents},
		Date:     core.Date{Time: date},
		Category: category,
		Source:   core.SourceProvider,
		Pending:  pt.Pending,
	}, nil
}

// RecordManual stores a hand-entered ledger transaction. The caller
// supplies a signed amount: negative for spending, positive for income.
func (s *ImportService) RecordManual(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	t.Source = core.SourceManual
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if _, err := s.repo.InsertTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "recorded manual transaction",
		log.FieldUserID, t.UserID,
		log.FieldAmount, t.Amount.Cents)

	return t, nil
}

func (s *ImportService) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}
