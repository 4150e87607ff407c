// Package plaid wraps the Plaid API behind a narrow provider interface
// so the import service can be tested against a fake.
package plaid

import (
	"context"
	"fmt"
	"time"

	plaidapi "github.com/plaid/plaid-go/v20/plaid"
)

// Transaction is the provider-side view of a bank transaction. Amounts
// keep Plaid's convention: debits positive, credits negative.
type Transaction struct {
	ID           string
	Date         string
	Amount       float64
	Name         string
	MerchantName string
	Category     []string
	Pending      bool
}

// Provider is the surface the importer needs from a bank-data vendor.
type Provider interface {
	CreateLinkToken(ctx context.Context, userID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (itemID, accessToken string, err error)
	FetchTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]Transaction, error)
}

type Client struct {
	api        *plaidapi.APIClient
	clientName string
}

var environments = map[string]plaidapi.Environment{
	"sandbox":    plaidapi.Sandbox,
	"production": plaidapi.Production,
}

func NewClient(clientID, secret, environment, clientName string) (*Client, error) {
	env, ok := environments[environment]
	if !ok {
		return nil, fmt.Errorf("unknown plaid environment %q", environment)
	}

	cfg := plaidapi.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	cfg.AddDefaultHeader("PLAID-SECRET", secret)
	cfg.UseEnvironment(env)

	return &Client{api: plaidapi.NewAPIClient(cfg), clientName: clientName}, nil
}

func (c *Client) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	req := plaidapi.NewLinkTokenCreateRequest(
		c.clientName,
		"en",
		[]plaidapi.CountryCode{plaidapi.COUNTRYCODE_US},
		plaidapi.LinkTokenCreateRequestUser{ClientUserId: userID},
	)
	req.SetProducts([]plaidapi.Products{plaidapi.PRODUCTS_TRANSACTIONS})

	resp, _, err := c.api.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*req).Execute()
	if err != nil {
		return "", fmt.Errorf("link token create: %w", err)
	}
	return resp.GetLinkToken(), nil
}

func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	req := plaidapi.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := c.api.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return "", "", fmt.Errorf("public token exchange: %w", err)
	}
	return resp.GetItemId(), resp.GetAccessToken(), nil
}

const dateLayout = "2006-01-02"

func (c *Client) FetchTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]Transaction, error) {
	req := plaidapi.NewTransactionsGetRequest(
		accessToken,
		start.Format(dateLayout),
		end.Format(dateLayout),
	)
	resp, _, err := c.api.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*req).Execute()
	if err != nil {
		return nil, fmt.Errorf("transactions get: %w", err)
	}

	txns := make([]Transaction, 0, len(resp.GetTransactions()))
	for _, t := range resp.GetTransactions() {
		txns = append(txns, Transaction{
			ID:           t.GetTransactionId(),
			Date:         t.GetDate(),
			Amount:       t.GetAmount(),
			Name:         t.GetName(),
			MerchantName: t.GetMerchantName(),
			Category:     t.GetCategory(),
			Pending:      t.GetPending(),
		})
	}
	return txns, nil
}
