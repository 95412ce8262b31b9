package sms

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fcdesk/credvault/internal/common"
)

// DefaultSENSEndpoint is the production SENS API gateway.
const DefaultSENSEndpoint = "https://sens.apigw.ntruss.com"

// SENSClient sends SMS through NCP SENS. Requests are signed with
// HMAC-SHA256 over "POST {path}\n{timestamp}\n{accessKey}" per the API
// gateway v2 signature scheme.
type SENSClient struct {
	accessKey string
	secretKey string
	serviceID string
	from      string
	endpoint  string
	client    *http.Client

	// now is a seam for tests; defaults to time.Now.
	now func() time.Time
}

// NewSENSClient builds a client for the given SENS service. endpoint may be
// empty to use the production gateway.
func NewSENSClient(accessKey, secretKey, serviceID, from, endpoint string) *SENSClient {
	if endpoint == "" {
		endpoint = DefaultSENSEndpoint
	}
	return &SENSClient{
		accessKey: accessKey,
		secretKey: secretKey,
		serviceID: serviceID,
		from:      from,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
		now:       time.Now,
	}
}

type sensMessage struct {
	To string `json:"to"`
}

type sensPayload struct {
	Type        string        `json:"type"`
	ContentType string        `json:"contentType"`
	CountryCode string        `json:"countryCode"`
	From        string        `json:"from"`
	Content     string        `json:"content"`
	Messages    []sensMessage `json:"messages"`
}

// Send posts a single SMS. A non-2xx response is reported as
// common.ErrSMSSendFailed with the upstream body attached.
func (c *SENSClient) Send(ctx context.Context, to string, content string) error {
	path := fmt.Sprintf("/sms/v2/services/%s/messages", c.serviceID)
	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)

	payload := sensPayload{
		Type:        "SMS",
		ContentType: "COMM",
		CountryCode: "82",
		From:        c.from,
		Content:     content,
		Messages:    []sensMessage{{To: to}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-ncp-apigw-timestamp", timestamp)
	req.Header.Set("x-ncp-iam-access-key", c.accessKey)
	req.Header.Set("x-ncp-apigw-signature-v2", c.signature(path, timestamp))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrSMSSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", common.ErrSMSSendFailed, resp.StatusCode, b)
	}
	return nil
}

func (c *SENSClient) signature(path, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	fmt.Fprintf(mac, "POST %s\n%s\n%s", path, timestamp, c.accessKey)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
