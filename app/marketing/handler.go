package marketing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/api"
	"github.com/flowerssaints/storefront/app/auth"
	"github.com/flowerssaints/storefront/models"
)

type Campaigns interface {
	Send(ctx context.Context, req SendRequest) (*SendResult, error)
	History(ctx context.Context) ([]models.MarketingCampaign, error)
}

type Handler struct {
	svc Campaigns
	log logrus.FieldLogger
}

func NewHandler(svc Campaigns, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

type sendRequest struct {
	Subject    string   `json:"subject"`
	Content    string   `json:"content"`
	ProductIDs []string `json:"productIds"`
}

type sendResponse struct {
	Message    string `json:"message"`
	CampaignID string `json:"campaignId"`
	SentTo     int    `json:"sentTo"`
	Failed     int    `json:"failed"`
}

type sender struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type campaignResponse struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	SentTo     int       `json:"sentTo"`
	ProductIDs []string  `json:"productIds"`
	SentBy     sender    `json:"sentBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HandleSend must run behind auth.Middleware.RequireAdmin.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	res, err := h.svc.Send(r.Context(), SendRequest{
		Subject:    req.Subject,
		Content:    req.Content,
		ProductIDs: req.ProductIDs,
		SentByID:   claims.Subject,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			api.ErrorResponse(w, http.StatusBadRequest, "Invalid request data")
			return
		}
		h.log.WithError(err).Error("marketing email error")
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to send marketing emails")
		return
	}

	api.OKResponse(w, sendResponse{
		Message:    fmt.Sprintf("Marketing email sent to %d subscribers", res.SentTo),
		CampaignID: res.CampaignID,
		SentTo:     res.SentTo,
		Failed:     res.Failed,
	})
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.svc.History(r.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to fetch marketing campaigns")
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch marketing campaigns")
		return
	}

	resp := make([]campaignResponse, len(campaigns))
	for i, c := range campaigns {
		ids := []string(c.ProductIDs)
		if ids == nil {
			ids = []string{}
		}
		resp[i] = campaignResponse{
			ID:         c.ID,
			Subject:    c.Subject,
			Content:    c.Content,
			SentTo:     c.SentTo,
			ProductIDs: ids,
			SentBy:     sender{Name: c.SentBy.Name, Email: c.SentBy.Email},
			CreatedAt:  c.CreatedAt,
		}
	}
	api.OKResponse(w, resp)
}
