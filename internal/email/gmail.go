package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailClient implements EmailClient for the Gmail API
type GmailClient struct {
	service *gmail.Service
	userID  string
	config  *GmailConfig
	ctx     context.Context
}

// GmailConfig holds Gmail API configuration
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string
	UserEmail    string

	MaxResults     int64
	RequestTimeout time.Duration
}

// NewGmailClient creates a new Gmail API client
func NewGmailClient(config *GmailConfig) (*GmailClient, error) {
	ctx := context.Background()

	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Scopes:       []string{gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
	}

	httpClient := oauthConfig.Client(ctx, token)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	userID := "me"
	if config.UserEmail != "" {
		userID = config.UserEmail
	}

	return &GmailClient{
		service: service,
		userID:  userID,
		config:  config,
		ctx:     ctx,
	}, nil
}

// Search performs a Gmail search query and returns matching messages
// with full content.
func (c *GmailClient) Search(query string) ([]InboundEmail, error) {
	call := c.service.Users.Messages.List(c.userID).Q(query)
	if c.config.MaxResults > 0 {
		call = call.MaxResults(c.config.MaxResults)
	}

	response, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("gmail search failed: %w", err)
	}

	emails := make([]InboundEmail, 0, len(response.Messages))
	for _, ref := range response.Messages {
		msg, err := c.GetMessage(ref.Id)
		if err != nil {
			// One undecodable message must not abort the scan
			continue
		}
		emails = append(emails, *msg)
	}
	return emails, nil
}

// GetMessage retrieves and decodes the full content of one message
func (c *GmailClient) GetMessage(id string) (*InboundEmail, error) {
	msg, err := c.service.Users.Messages.Get(c.userID, id).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	result := &InboundEmail{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Headers:  make(map[string]string),
		Labels:   msg.LabelIds,
	}

	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			result.Headers[header.Name] = header.Value
			switch strings.ToLower(header.Name) {
			case "from":
				result.From = parseAddress(header.Value)
			case "subject":
				result.Subject = header.Value
			case "date":
				if parsed, err := mail.ParseDate(header.Value); err == nil {
					result.Date = parsed
				}
			}
		}
		result.BodyText, result.BodyHTML = extractBodies(msg.Payload)
	}

	if result.Date.IsZero() && msg.InternalDate > 0 {
		result.Date = time.UnixMilli(msg.InternalDate)
	}

	return result, nil
}

// HealthCheck verifies the client connection is working
func (c *GmailClient) HealthCheck() error {
	if _, err := c.service.Users.GetProfile(c.userID).Do(); err != nil {
		return fmt.Errorf("gmail health check failed: %w", err)
	}
	return nil
}

// Close cleans up resources
func (c *GmailClient) Close() error {
	return nil
}

// extractBodies walks the MIME part tree collecting the first plain and
// HTML bodies.
func extractBodies(payload *gmail.MessagePart) (plainText, htmlText string) {
	if payload == nil {
		return "", ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		decoded := decodeBody(payload.Body.Data)
		switch payload.MimeType {
		case "text/plain":
			plainText = decoded
		case "text/html":
			htmlText = decoded
		}
	}

	for _, part := range payload.Parts {
		partPlain, partHTML := extractBodies(part)
		if plainText == "" {
			plainText = partPlain
		}
		if htmlText == "" {
			htmlText = partHTML
		}
	}

	return plainText, htmlText
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// parseAddress extracts the bare address from a "Name <addr>" header
func parseAddress(raw string) string {
	if addr, err := mail.ParseAddress(raw); err == nil {
		return addr.Address
	}
	return strings.TrimSpace(raw)
}
