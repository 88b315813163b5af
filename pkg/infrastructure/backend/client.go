package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"autoshop/pkg/domain/model"
)

// RemoteError is a non-2xx answer of the backend. Message is the backend's own text.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Client talks to the hosted backend: the auth REST API and the serverless functions.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	} `json:"user"`
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*model.AuthToken, error) {
	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &resp); err != nil {
		return nil, err
	}
	return &model.AuthToken{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().UTC().Add(time.Duration(resp.ExpiresIn) * time.Second),
		User:         model.AuthUser{ID: resp.User.ID, Email: resp.User.Email},
	}, nil
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*model.AuthUser, error) {
	var resp struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &resp)
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && (remoteErr.Status == http.StatusUnauthorized || remoteErr.Status == http.StatusForbidden) {
		return nil, model.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return &model.AuthUser{ID: resp.ID, Email: resp.Email}, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

func (c *Client) FinalizeInvoice(ctx context.Context, invoiceID uuid.UUID, accessToken string) (string, error) {
	var resp struct {
		InvoiceNumber string `json:"invoice_number"`
	}
	body := map[string]string{"invoice_id": invoiceID.String()}
	if err := c.do(ctx, http.MethodPost, "/functions/v1/finalize-invoice", accessToken, body, &resp); err != nil {
		return "", err
	}
	if resp.InvoiceNumber == "" {
		return "", errors.New("finalize-invoice returned no invoice number")
	}
	return resp.InvoiceNumber, nil
}

func (c *Client) CreateStaffUser(ctx context.Context, member model.NewStaffMember, accessToken string) (uuid.UUID, error) {
	var resp struct {
		UserID uuid.UUID `json:"user_id"`
	}
	body := map[string]string{"email": member.Email, "full_name": member.FullName}
	if err := c.do(ctx, http.MethodPost, "/functions/v1/create-staff-user", accessToken, body, &resp); err != nil {
		return uuid.Nil, err
	}
	if resp.UserID == uuid.Nil {
		return uuid.Nil, errors.New("create-staff-user returned no user id")
	}
	return resp.UserID, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(err, "failed to build request %s %s", method, path)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(started).String(),
	}).Debug("backend call")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

// errorMessage picks the human readable text out of the error shapes the backend uses.
func errorMessage(status int, data []byte) string {
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		for _, candidate := range []string{body.ErrorDescription, body.Msg, body.Message, body.Error} {
			if candidate != "" {
				return candidate
			}
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return fmt.Sprintf("backend returned %d %s", status, http.StatusText(status))
}
