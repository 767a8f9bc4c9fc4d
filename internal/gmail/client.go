package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxtasks/internal/google"
)

// unreadQuery constrains listing to unread, inbox-scoped messages.
const unreadQuery = "is:unread in:inbox"

// Client wraps the Gmail Users service
type Client struct {
	svc     *gmail.UsersService
	account string // The account this client is associated with
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return google.HasToken()
}

// NewClientForAccount creates a new Gmail client with OAuth2 authentication for a specific account
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		account: account,
	}, nil
}

// NewClient creates a new Gmail client with OAuth2 authentication for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// ListUnread lists the IDs of unread inbox messages with pagination.
// It will fetch up to maxResults message IDs, making multiple API calls if necessary.
func (c *Client) ListUnread(ctx context.Context, maxResults int64) ([]string, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	var ids []string
	pageToken := ""

	for {
		remaining := maxResults - int64(len(ids))
		if remaining <= 0 {
			break
		}

		// Gmail API has a max page size, typically 100
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Q(unreadQuery).MaxResults(pageSize)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list unread messages: %w", err)
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" || int64(len(ids)) >= maxResults {
			break
		}

		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}

	return ids, nil
}

// GetMessage retrieves a full Gmail message
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// FetchUnread lists unread inbox messages and decodes each into a Message.
// Bodies are decoded from the MIME part tree and truncated to MaxBodyLength.
func (c *Client) FetchUnread(ctx context.Context, maxResults int64) ([]Message, error) {
	ids, err := c.ListUnread(ctx, maxResults)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(ids))
	for _, id := range ids {
		msg, err := c.GetMessage(ctx, id)
		if err != nil {
			return nil, err
		}
		messages = append(messages, ToMessage(msg))
	}

	return messages, nil
}

// ToMessage converts a raw Gmail message into the pipeline's Message shape.
func ToMessage(msg *gmail.Message) Message {
	return Message{
		ID:      msg.Id,
		Subject: HeaderValue(msg, "Subject"),
		From:    HeaderValue(msg, "From"),
		Date:    parseDate(HeaderValue(msg, "Date")),
		Body:    Truncate(ExtractBody(msg.Payload), MaxBodyLength),
	}
}
