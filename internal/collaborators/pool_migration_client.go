package collaborators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/launchpad-amm/curveengine/pkg/curve"
)

// PoolMigrationClient is the production PoolMigration adapter: it POSTs a
// MigrationIntent to an external concentrated-liquidity pool's RPC
// endpoint over HTTP, the same request/response shape the legacy
// graduation RPC call used against the chain-creation service.
type PoolMigrationClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewPoolMigrationClient builds a client against the given RPC endpoint
// with a bounded request timeout, since pool creation on the remote side
// is not instantaneous but must not hang the curve in Graduated forever.
func NewPoolMigrationClient(endpoint string) *PoolMigrationClient {
	return &PoolMigrationClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// migrationRPCPayload is the wire shape POSTed to the migration endpoint.
type migrationRPCPayload struct {
	CurveID     string `json:"curve_id"`
	BaseAmount  string `json:"base_amount"`
	QuoteAmount string `json:"quote_amount"`
	FinalPrice  string `json:"final_price"`
}

// Accept implements PoolMigration by calling the remote pool-creation
// RPC. A non-2xx response or transport error is wrapped in
// curve.ErrMigrationFailed; the caller keeps the curve at Graduated and
// may retry.
func (c *PoolMigrationClient) Accept(ctx context.Context, curveID string, intent curve.MigrationIntent) error {
	payload := migrationRPCPayload{
		CurveID:     curveID,
		BaseAmount:  intent.BaseAmount.String(),
		QuoteAmount: intent.QuoteAmount.String(),
		FinalPrice:  intent.FinalPrice.String(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal migration payload: %v", curve.ErrMigrationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("%w: build migration request: %v", curve.ErrMigrationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: migration request: %v", curve.ErrMigrationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: migration RPC returned status %d", curve.ErrMigrationFailed, resp.StatusCode)
	}

	return nil
}
