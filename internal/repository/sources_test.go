package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BizPulse/internal/domain/models"
	pkghttp "BizPulse/pkg/http"
	pkgkafka "BizPulse/pkg/kafka"
)

func TestFileSourceMissingFileIsEmpty(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.json"))
	customers, err := src.Customers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestFileSourceReadsDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	raw := `{
  "customers": [{"customer_id": "C1", "customer_name": "Acme", "segment": "SMB", "last_order_date": "2025-01-02T00:00:00Z", "lifetime_value": 1200}],
  "invoices": [{"invoice_id": "I1", "customer_id": "C1", "invoice_date": "2025-01-02T00:00:00Z", "invoice_amount": 99.5, "payment_status": "Overdue"}],
  "products": [{"product_id": "SKU-1", "product_name": "Widget", "stock_level": 3, "reorder_threshold": 5}]
}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	src := NewFileSource(path)
	ctx := context.Background()

	customers, err := src.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	require.NotNil(t, customers[0].LastOrderDate)
	assert.Equal(t, "Acme", customers[0].Name)

	invoices, err := src.Invoices(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, 99.5, invoices[0].Amount)

	orders, err := src.Orders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestFileSourceRejectsMalformedDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := NewFileSource(path).Products(context.Background())
	require.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/v1/products":
			_ = json.NewEncoder(w).Encode([]models.Product{{ProductID: "SKU-9", StockLevel: 1, ReorderThreshold: 2}})
		default:
			_, _ = w.Write([]byte("[]"))
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(pkghttp.NewClient(pkghttp.WithTimeout(2*time.Second)), srv.URL+"/v1/", "secret")
	products, err := src.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "SKU-9", products[0].ProductID)

	orders, err := src.Orders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)

	bad := NewHTTPSource(pkghttp.NewClient(), srv.URL, "wrong")
	_, err = bad.Customers(context.Background())
	require.Error(t, err)
}

type capturedBatch struct {
	topic string
	msgs  []pkgkafka.Message
}

type recordingWriter struct {
	batches []capturedBatch
	closed  bool
}

func (w *recordingWriter) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	w.batches = append(w.batches, capturedBatch{topic: topic, msgs: msgs})
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaRiskPublisherKeysByRiskType(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaRiskPublisher(w, "bizpulse.risk-events")

	require.NoError(t, p.PublishRiskEvents(context.Background(), nil))
	assert.Empty(t, w.batches)

	events := []models.RiskEvent{
		{EventID: "e1", EventType: models.RiskEventCreated, Risk: models.Risk{RiskType: models.RiskTypeRevenue}},
		{EventID: "e2", EventType: models.RiskEventCreated, Risk: models.Risk{RiskType: models.RiskTypeCashFlow}},
	}
	require.NoError(t, p.PublishRiskEvents(context.Background(), events))
	require.Len(t, w.batches, 1)
	assert.Equal(t, "bizpulse.risk-events", w.batches[0].topic)
	assert.Equal(t, []byte("REVENUE"), w.batches[0].msgs[0].Key)
	assert.Equal(t, []byte("CASH_FLOW"), w.batches[0].msgs[1].Key)
	assert.Equal(t, "risk.created", w.batches[0].msgs[0].Headers["event_type"])
	assert.Equal(t, "e2", w.batches[0].msgs[1].Headers[pkgkafka.TraceHeader])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
