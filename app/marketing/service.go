// Package marketing sends admin-authored campaigns to the newsletter list.
package marketing

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/flowerssaints/storefront/app/email"
	"github.com/flowerssaints/storefront/app/logging"
	"github.com/flowerssaints/storefront/models"
)

// DefaultConcurrency bounds the number of emails in flight per campaign.
const DefaultConcurrency = 10

var ErrInvalidRequest = errors.New("invalid request data")

type SubscriberLister interface {
	ListActive() ([]models.NewsletterSubscriber, error)
}

type ProductLoader interface {
	GetByIDs(ids []string) ([]models.Product, error)
}

type CampaignStore interface {
	Create(campaign *models.MarketingCampaign) error
	List() ([]models.MarketingCampaign, error)
}

type Mailer interface {
	Send(ctx context.Context, to string, data email.Data) error
}

type SendRequest struct {
	Subject    string
	Content    string
	ProductIDs []string
	SentByID   string
}

type SendResult struct {
	CampaignID string
	SentTo     int
	Failed     int
}

type Service struct {
	subscribers SubscriberLister
	products    ProductLoader
	campaigns   CampaignStore
	mailer      Mailer
	log         logrus.FieldLogger
	concurrency int
}

func NewService(subscribers SubscriberLister, products ProductLoader, campaigns CampaignStore, mailer Mailer, log logrus.FieldLogger) *Service {
	return &Service{
		subscribers: subscribers,
		products:    products,
		campaigns:   campaigns,
		mailer:      mailer,
		log:         log,
		concurrency: DefaultConcurrency,
	}
}

func (r *SendRequest) validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	if r.Subject == "" || strings.TrimSpace(r.Content) == "" {
		return ErrInvalidRequest
	}
	for _, id := range r.ProductIDs {
		if _, err := uuid.Parse(id); err != nil {
			return ErrInvalidRequest
		}
	}
	return nil
}

// Send emails every active subscriber and records the campaign. A failed
// recipient is logged and counted; it does not stop the others. SentTo is the
// number of intended recipients.
func (s *Service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	subscribers, err := s.subscribers.ListActive()
	if err != nil {
		return nil, err
	}
	products, err := s.products.GetByIDs(req.ProductIDs)
	if err != nil {
		return nil, err
	}

	data := email.MarketingData{
		Subject:  req.Subject,
		Content:  req.Content,
		Products: make([]email.ProductLine, len(products)),
	}
	for i := range products {
		data.Products[i] = email.ProductLine{
			Title: products[i].Title,
			Price: products[i].Price,
			Link:  products[i].AffiliateURL(),
		}
	}

	var failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, sub := range subscribers {
		to := sub.Email
		g.Go(func() error {
			if err := s.mailer.Send(ctx, to, data); err != nil {
				failed.Add(1)
				s.log.WithError(err).WithField("email", logging.RedactEmail(to)).Warn("failed to send marketing email")
			}
			return nil
		})
	}
	_ = g.Wait()

	productIDs := req.ProductIDs
	if productIDs == nil {
		productIDs = []string{}
	}
	campaign := &models.MarketingCampaign{
		Subject:    req.Subject,
		Content:    req.Content,
		SentTo:     len(subscribers),
		ProductIDs: pq.StringArray(productIDs),
		SentByID:   req.SentByID,
	}
	if err := s.campaigns.Create(campaign); err != nil {
		return nil, err
	}

	result := &SendResult{
		CampaignID: campaign.ID,
		SentTo:     len(subscribers),
		Failed:     int(failed.Load()),
	}
	s.log.WithFields(logrus.Fields{
		"campaign_id": result.CampaignID,
		"sent_to":     result.SentTo,
		"failed":      result.Failed,
	}).Info("marketing campaign sent")
	return result, nil
}

func (s *Service) History(ctx context.Context) ([]models.MarketingCampaign, error) {
	return s.campaigns.List()
}
