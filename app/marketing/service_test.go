package marketing

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowerssaints/storefront/app/email"
	"github.com/flowerssaints/storefront/app/logging"
	"github.com/flowerssaints/storefront/models"
)

const productID = "0f8fad5b-d9cb-469f-a165-70867728950e"

// --- Mocks ---

// MockSubscribers filters a fixed list down to the active entries.
type MockSubscribers struct {
	All []models.NewsletterSubscriber
	Err error
}

func (m *MockSubscribers) ListActive() ([]models.NewsletterSubscriber, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var active []models.NewsletterSubscriber
	for _, s := range m.All {
		if s.Status == models.SubscriberActive {
			active = append(active, s)
		}
	}
	return active, nil
}

type MockProducts struct {
	Products []models.Product
	LastIDs  []string
}

func (m *MockProducts) GetByIDs(ids []string) ([]models.Product, error) {
	m.LastIDs = ids
	return m.Products, nil
}

type MockCampaigns struct {
	Created   []*models.MarketingCampaign
	Campaigns []models.MarketingCampaign
	Err       error
}

func (m *MockCampaigns) Create(c *models.MarketingCampaign) error {
	if m.Err != nil {
		return m.Err
	}
	c.ID = "campaign-1"
	m.Created = append(m.Created, c)
	return nil
}

func (m *MockCampaigns) List() ([]models.MarketingCampaign, error) {
	return m.Campaigns, m.Err
}

type MockMailer struct {
	mu     sync.Mutex
	Sent   []string
	Data   []email.Data
	FailTo map[string]bool
}

func (m *MockMailer) Send(ctx context.Context, to string, data email.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, to)
	m.Data = append(m.Data, data)
	if m.FailTo[to] {
		return errors.New("mailbox unavailable")
	}
	return nil
}

func subscribers() *MockSubscribers {
	return &MockSubscribers{All: []models.NewsletterSubscriber{
		{Email: "a@example.com", Status: models.SubscriberActive},
		{Email: "b@example.com", Status: models.SubscriberActive},
		{Email: "c@example.com", Status: models.SubscriberActive},
		{Email: "gone@example.com", Status: models.SubscriberUnsubscribed},
	}}
}

// --- Tests ---

func TestService_SendOnlyToActiveSubscribers(t *testing.T) {
	// Arrange
	campaigns, mailer := &MockCampaigns{}, &MockMailer{}
	products := &MockProducts{Products: []models.Product{{
		ID:          productID,
		Title:       "Trail Runner",
		Price:       decimal.NewFromFloat(19.99),
		AmazonLink:  "https://www.amazon.com/dp/B01",
		AffiliateID: "store-20",
	}}}
	svc := NewService(subscribers(), products, campaigns, mailer, logging.Discard())

	// Act
	res, err := svc.Send(context.Background(), SendRequest{
		Subject:    "Summer picks",
		Content:    "<p>Deals</p>",
		ProductIDs: []string{productID},
		SentByID:   "admin-1",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, res.SentTo)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, "campaign-1", res.CampaignID)

	sort.Strings(mailer.Sent)
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, mailer.Sent)

	data, ok := mailer.Data[0].(email.MarketingData)
	require.True(t, ok)
	assert.Equal(t, "Summer picks", data.Subject)
	require.Len(t, data.Products, 1)
	assert.Equal(t, "https://www.amazon.com/dp/B01?tag=store-20", data.Products[0].Link)

	require.Len(t, campaigns.Created, 1)
	c := campaigns.Created[0]
	assert.Equal(t, 3, c.SentTo)
	assert.Equal(t, "admin-1", c.SentByID)
	assert.Equal(t, []string{productID}, []string(c.ProductIDs))
}

func TestService_SendToleratesRecipientFailures(t *testing.T) {
	campaigns := &MockCampaigns{}
	mailer := &MockMailer{FailTo: map[string]bool{"b@example.com": true}}
	svc := NewService(subscribers(), &MockProducts{}, campaigns, mailer, logging.Discard())

	res, err := svc.Send(context.Background(), SendRequest{Subject: "Hi", Content: "Body", SentByID: "admin-1"})

	require.NoError(t, err)
	assert.Len(t, mailer.Sent, 3)
	assert.Equal(t, 3, res.SentTo)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, campaigns.Created, 1)
	assert.NotNil(t, campaigns.Created[0].ProductIDs)
}

func TestService_SendValidation(t *testing.T) {
	testCases := []struct {
		name string
		req  SendRequest
	}{
		{name: "missing subject", req: SendRequest{Content: "Body"}},
		{name: "blank subject", req: SendRequest{Subject: "   ", Content: "Body"}},
		{name: "missing content", req: SendRequest{Subject: "Hi"}},
		{name: "bad product id", req: SendRequest{Subject: "Hi", Content: "Body", ProductIDs: []string{"PROD001"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mailer := &MockMailer{}
			campaigns := &MockCampaigns{}
			svc := NewService(subscribers(), &MockProducts{}, campaigns, mailer, logging.Discard())

			_, err := svc.Send(context.Background(), tc.req)

			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Empty(t, mailer.Sent)
			assert.Empty(t, campaigns.Created)
		})
	}
}

func TestService_SendStoreFailures(t *testing.T) {
	t.Run("subscriber lookup", func(t *testing.T) {
		mailer := &MockMailer{}
		svc := NewService(&MockSubscribers{Err: errors.New("db down")}, &MockProducts{}, &MockCampaigns{}, mailer, logging.Discard())

		_, err := svc.Send(context.Background(), SendRequest{Subject: "Hi", Content: "Body"})

		assert.EqualError(t, err, "db down")
		assert.Empty(t, mailer.Sent)
	})

	t.Run("campaign record", func(t *testing.T) {
		svc := NewService(subscribers(), &MockProducts{}, &MockCampaigns{Err: errors.New("insert failed")}, &MockMailer{}, logging.Discard())

		_, err := svc.Send(context.Background(), SendRequest{Subject: "Hi", Content: "Body"})

		assert.EqualError(t, err, "insert failed")
	})
}

// blockingMailer holds each send briefly and records the peak number of sends in flight.
type blockingMailer struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (b *blockingMailer) Send(ctx context.Context, to string, data email.Data) error {
	b.mu.Lock()
	b.active++
	if b.active > b.maxSeen {
		b.maxSeen = b.active
	}
	b.mu.Unlock()

	time.Sleep(time.Millisecond)

	b.mu.Lock()
	b.active--
	b.mu.Unlock()
	return nil
}

func TestService_SendBoundsConcurrency(t *testing.T) {
	all := make([]models.NewsletterSubscriber, 50)
	for i := range all {
		all[i] = models.NewsletterSubscriber{Email: string(rune('a'+i%26)) + "@example.com", Status: models.SubscriberActive}
	}
	mailer := &blockingMailer{}
	svc := NewService(&MockSubscribers{All: all}, &MockProducts{}, &MockCampaigns{}, mailer, logging.Discard())
	svc.concurrency = 3

	res, err := svc.Send(context.Background(), SendRequest{Subject: "Hi", Content: "Body"})

	require.NoError(t, err)
	assert.Equal(t, 50, res.SentTo)
	assert.LessOrEqual(t, mailer.maxSeen, 3)
}
