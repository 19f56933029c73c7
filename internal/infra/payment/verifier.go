package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"tablebook/internal/pkg/config"
	"tablebook/internal/pkg/errs"

	"github.com/google/uuid"
)

// GatewayVerifier asks the payment gateway whether the advance for a
// request has been captured. Success is a single status code comparison;
// everything else about the gateway's payload is opaque to us.
type GatewayVerifier struct {
	client      *http.Client
	statusURL   string
	successCode string
}

func NewGatewayVerifier(cfg config.PaymentConfig) *GatewayVerifier {
	return &GatewayVerifier{
		client:      &http.Client{Timeout: cfg.Timeout},
		statusURL:   cfg.StatusURL,
		successCode: cfg.SuccessCode,
	}
}

type statusResponse struct {
	StatusCode string `json:"statusCode"`
	Message    string `json:"message"`
}

func (v *GatewayVerifier) VerifyPaid(ctx context.Context, requestID uuid.UUID) (bool, error) {
	if v.statusURL == "" {
		return false, errs.New("payment gateway status url is not configured")
	}

	endpoint := fmt.Sprintf("%s?reference=%s", v.statusURL, url.QueryEscape(requestID.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, errs.Wrap(err, "failed to build payment status request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, errs.Wrap(err, "payment status request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, errs.New(fmt.Sprintf("payment gateway returned http %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, errs.Wrap(err, "failed to read payment status response")
	}
	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return false, errs.Wrap(err, "failed to decode payment status response")
	}
	return status.StatusCode == v.successCode, nil
}
