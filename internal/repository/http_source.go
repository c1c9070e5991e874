package repository

import (
	"context"
	"strings"

	"BizPulse/internal/domain/models"
	domrepo "BizPulse/internal/domain/repository"
	pkghttp "BizPulse/pkg/http"
)

// HTTPSource pulls records from a REST exporter exposing
// GET {base}/customers, /orders, /invoices and /products as JSON arrays.
type HTTPSource struct {
	client  *pkghttp.Client
	baseURL string
	apiKey  string
}

var _ domrepo.RecordSource = (*HTTPSource)(nil)

func NewHTTPSource(client *pkghttp.Client, baseURL, apiKey string) *HTTPSource {
	return &HTTPSource{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

func (s *HTTPSource) Customers(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	return out, s.get(ctx, "customers", &out)
}

func (s *HTTPSource) Orders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	return out, s.get(ctx, "orders", &out)
}

func (s *HTTPSource) Invoices(ctx context.Context) ([]models.Invoice, error) {
	var out []models.Invoice
	return out, s.get(ctx, "invoices", &out)
}

func (s *HTTPSource) Products(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	return out, s.get(ctx, "products", &out)
}

func (s *HTTPSource) get(ctx context.Context, resource string, dest interface{}) error {
	headers := map[string]string{"Accept": "application/json"}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}
	return s.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodGet,
		URL:     s.baseURL + "/" + resource,
		Headers: headers,
	}, dest)
}
