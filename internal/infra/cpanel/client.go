// Package cpanel talks to the shop's legacy CPanel invoicing API. Every call
// goes through the circuit breaker and retry stack; the raw invoice rows are
// handed to the analytics normalizer untouched.
package cpanel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
	"github.com/ftrhpr/estimator-sub002/internal/infra/resilience"
)

var tracer = otel.Tracer("cpanel")

// Client is the CPanel API adapter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bh         *resilience.Bulkhead
}

// NewClient creates a CPanel client.
func NewClient(httpClient *http.Client, baseURL, token string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Client {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		cb:         cb,
		cfg:        cfg,
		bh:         resilience.NewBulkhead(cfg.MaxConcurrency),
	}
}

type invoicesEnvelope struct {
	Data []domain.RawRecord `json:"data"`
}

// FetchInvoices fetches invoice rows with retry, circuit breaker, and
// tracing. onlyCPanelOnly asks the API for invoices with no document-store
// counterpart.
func (c *Client) FetchInvoices(ctx context.Context, limit int, onlyCPanelOnly bool) ([]domain.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "CPanelClient.FetchInvoices")
	defer span.End()
	span.SetAttributes(
		attribute.Int("invoices.limit", limit),
		attribute.Bool("invoices.cpanel_only", onlyCPanelOnly),
	)

	if err := c.bh.Acquire(ctx); err != nil {
		return nil, c.wrapError(err)
	}
	defer c.bh.Release()

	var envelope invoicesEnvelope

	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/api/invoices?limit=%d&cpanel_only=%s",
				c.baseURL, limit, strconv.FormatBool(onlyCPanelOnly))
			return c.getJSON(ctx, url, &envelope)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return envelope.Data, nil
	})
	if err != nil {
		return nil, c.wrapError(err)
	}

	return envelope.Data, nil
}

type paymentsDTO struct {
	TotalCollected   float64 `json:"total_collected"`
	TotalInvoiced    float64 `json:"total_invoiced"`
	TotalOutstanding float64 `json:"total_outstanding"`
	CollectionRate   float64 `json:"collection_rate"`
	MethodBreakdown  []struct {
		Method string  `json:"method"`
		Amount float64 `json:"amount"`
		Count  int     `json:"count"`
	} `json:"method_breakdown"`
	MonthlyData []struct {
		Month     string  `json:"month"`
		Collected float64 `json:"collected"`
	} `json:"monthly_data"`
}

// FetchPaymentsAnalytics fetches the payment rollup from CPanel.
func (c *Client) FetchPaymentsAnalytics(ctx context.Context) (*domain.PaymentSummary, error) {
	ctx, span := tracer.Start(ctx, "CPanelClient.FetchPaymentsAnalytics")
	defer span.End()

	if err := c.bh.Acquire(ctx); err != nil {
		return nil, c.wrapError(err)
	}
	defer c.bh.Release()

	var dto paymentsDTO

	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			return c.getJSON(ctx, c.baseURL+"/api/payments/analytics", &dto)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return dto, nil
	})
	if err != nil {
		return nil, c.wrapError(err)
	}

	return mapPayments(&dto), nil
}

type createInvoiceResponse struct {
	ID string `json:"id"`
}

// CreateInvoice mirrors a case into CPanel and returns the new invoice id.
// Creation is not retried: a timed-out POST may still have landed, and a
// duplicate invoice is worse than a surfaced error.
func (c *Client) CreateInvoice(ctx context.Context, cs *domain.Case) (string, error) {
	ctx, span := tracer.Start(ctx, "CPanelClient.CreateInvoice")
	defer span.End()
	span.SetAttributes(attribute.String("case.id", cs.ID))

	if err := c.bh.Acquire(ctx); err != nil {
		return "", c.wrapError(err)
	}
	defer c.bh.Release()

	body, err := json.Marshal(invoicePayload(cs))
	if err != nil {
		return "", err
	}

	result, err := c.cb.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/api/invoices", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("cpanel API returned status %d", resp.StatusCode)
		}

		var created createInvoiceResponse
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return nil, err
		}
		return created.ID, nil
	})
	if err != nil {
		return "", c.wrapError(err)
	}

	return result.(string), nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cpanel API returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) wrapError(err error) error {
	if resilience.IsCircuitOpen(err) {
		return &domain.ErrCircuitOpen{Service: "cpanel"}
	}
	return &domain.ErrExternalService{Service: "cpanel", Err: err}
}

func mapPayments(dto *paymentsDTO) *domain.PaymentSummary {
	out := &domain.PaymentSummary{
		TotalCollected:   dto.TotalCollected,
		TotalInvoiced:    dto.TotalInvoiced,
		TotalOutstanding: dto.TotalOutstanding,
		CollectionRate:   dto.CollectionRate,
	}
	for _, m := range dto.MethodBreakdown {
		out.MethodBreakdown = append(out.MethodBreakdown, domain.PaymentMethodStat{
			Method: m.Method,
			Amount: m.Amount,
			Count:  m.Count,
		})
	}
	for _, m := range dto.MonthlyData {
		out.MonthlyData = append(out.MonthlyData, domain.MonthlyPaymentData{
			Month:     m.Month,
			Collected: m.Collected,
		})
	}
	return out
}

func invoicePayload(cs *domain.Case) map[string]any {
	services := make([]map[string]any, 0, len(cs.Services))
	for _, s := range cs.Services {
		services = append(services, map[string]any{
			"name_ka":   s.NameKa,
			"name_en":   s.NameEn,
			"price":     s.Price,
			"count":     s.Count,
			"unit_rate": s.UnitRate,
		})
	}
	parts := make([]map[string]any, 0, len(cs.Parts))
	for _, p := range cs.Parts {
		parts = append(parts, map[string]any{
			"name":       p.Name,
			"unit_price": p.UnitPrice,
			"quantity":   p.Quantity,
		})
	}
	return map[string]any{
		"external_id":    cs.ID,
		"customer_name":  cs.CustomerName,
		"customer_phone": cs.CustomerPhone,
		"plate_number":   cs.PlateNumber,
		"total_amount":   cs.TotalPrice,
		"include_vat":    cs.IncludeVAT,
		"services":       services,
		"parts":          parts,
	}
}
