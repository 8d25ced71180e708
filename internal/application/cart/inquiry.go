package cart

import (
	"net/url"
	"strings"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared/valueobject"
)

// Messaging link defaults
const (
	DefaultMessagingBaseURL = "https://wa.me"
	DefaultInquiryTemplate  = "Hola, me interesa el producto {name} (código {id}) a {price}"
)

// InquiryConfig configures the outbound messaging link
type InquiryConfig struct {
	BaseURL  string
	Phone    string
	Template string
	Locale   string
}

// InquiryResponse describes a generated messaging link
type InquiryResponse struct {
	ProductID string `json:"productId"`
	URL       string `json:"url"`
	Message   string `json:"message"`
}

// InquiryService builds deep links that open a chat about a product with
// the message pre-filled
type InquiryService struct {
	baseURL  string
	phone    string
	template string
	locale   string
}

// NewInquiryService creates a new InquiryService, applying defaults
func NewInquiryService(cfg InquiryConfig) *InquiryService {
	svc := &InquiryService{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		phone:    digitsOnly(cfg.Phone),
		template: cfg.Template,
		locale:   cfg.Locale,
	}
	if svc.baseURL == "" {
		svc.baseURL = DefaultMessagingBaseURL
	}
	if svc.template == "" {
		svc.template = DefaultInquiryTemplate
	}
	if svc.locale == "" {
		svc.locale = valueobject.DefaultLocale
	}
	return svc
}

// Link returns the messaging link for a product of the session's catalog
func (s *InquiryService) Link(sess *Session, productID string) (*InquiryResponse, error) {
	product, ok := sess.Registry.Find(productID)
	if !ok {
		return nil, catalog.NewProductNotFoundError(productID)
	}

	message := strings.NewReplacer(
		"{name}", product.DisplayName,
		"{id}", product.ID,
		"{price}", product.UnitPrice().Format(s.locale),
	).Replace(s.template)

	return &InquiryResponse{
		ProductID: product.ID,
		URL:       s.baseURL + "/" + s.phone + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20"),
		Message:   message,
	}, nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
