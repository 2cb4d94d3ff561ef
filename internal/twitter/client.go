// Package twitter reads mentions from and posts replies to the X API v2
package twitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
	gotwitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/samber/lo"

	"github.com/codegangsta/chartbot/internal/types"
)

// DefaultBaseURL is the API host; endpoint paths carry the /2 version prefix
const DefaultBaseURL = "https://api.twitter.com"

const pageSize = 100

// Credentials are the OAuth 1.0a user-context keys of the bot account
type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Client reads mentions of one account and posts tweets as that account
type Client struct {
	api    *gotwitter.Client
	userID string
	logger *slog.Logger
}

// New creates a client signing requests with OAuth 1.0a. An empty baseURL uses DefaultBaseURL.
func New(creds Credentials, baseURL, userID string, timeout time.Duration, logger *slog.Logger) *Client {
	cfg := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	hc := cfg.Client(oauth1.NoContext, oauth1.NewToken(creds.AccessToken, creds.AccessSecret))
	hc.Timeout = timeout
	return NewWithHTTPClient(hc, baseURL, userID, logger)
}

// NewWithHTTPClient creates a client using an already authenticated http.Client
func NewWithHTTPClient(hc *http.Client, baseURL, userID string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		api: &gotwitter.Client{
			Authorizer: signed{},
			Client:     hc,
			Host:       baseURL,
		},
		userID: userID,
		logger: logger,
	}
}

// signed leaves requests alone; the http.Client already signs them
type signed struct{}

func (signed) Add(*http.Request) {}

// APIError is a non-2xx answer from the API
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("x api returned %d: %s", e.Status, e.Body)
}

func apiError(err error) error {
	var resp *gotwitter.ErrorResponse
	if errors.As(err, &resp) {
		return &APIError{Status: resp.StatusCode, Body: lo.CoalesceOrEmpty(resp.Detail, resp.Title)}
	}
	var httpErr *gotwitter.HTTPError
	if errors.As(err, &httpErr) {
		return &APIError{Status: httpErr.StatusCode, Body: httpErr.Status}
	}
	return err
}

// MentionsQuery selects mentions newer than SinceID, or created after StartTime when SinceID is empty
type MentionsQuery struct {
	SinceID   string
	StartTime time.Time
}

// Mentions returns every mention matching q, following pagination, newest
// first as the API orders them, and the newest id of the result set.
func (c *Client) Mentions(ctx context.Context, q MentionsQuery) ([]types.InboundMessage, string, error) {
	opts := gotwitter.UserMentionTimelineOpts{
		Expansions:  []gotwitter.Expansion{gotwitter.ExpansionAuthorID},
		UserFields:  []gotwitter.UserField{gotwitter.UserFieldUserName},
		TweetFields: []gotwitter.TweetField{gotwitter.TweetFieldCreatedAt, gotwitter.TweetFieldAuthorID},
		MaxResults:  pageSize,
	}
	switch {
	case q.SinceID != "":
		opts.SinceID = q.SinceID
	case !q.StartTime.IsZero():
		opts.StartTime = q.StartTime.UTC()
	}

	var (
		msgs   []types.InboundMessage
		newest string
		pages  int
	)
	for {
		resp, err := c.api.UserMentionTimeline(ctx, c.userID, opts)
		if err != nil {
			return nil, "", fmt.Errorf("fetching mentions: %w", apiError(err))
		}
		pages++

		if resp.Raw != nil {
			msgs = append(msgs, c.toInbound(resp.Raw)...)
		}
		if resp.Meta == nil {
			break
		}
		// the first page holds the newest mention
		if newest == "" {
			newest = resp.Meta.NewestID
		}
		if resp.Meta.NextToken == "" {
			break
		}
		opts.PaginationToken = resp.Meta.NextToken
	}

	c.logger.Debug("fetched mentions", "count", len(msgs), "pages", pages, "newest_id", newest)
	return msgs, newest, nil
}

func (c *Client) toInbound(raw *gotwitter.TweetRaw) []types.InboundMessage {
	handles := map[string]string{}
	if raw.Includes != nil {
		handles = lo.SliceToMap(raw.Includes.Users, func(u *gotwitter.UserObj) (string, string) {
			return u.ID, u.UserName
		})
	}
	for _, e := range raw.Errors {
		c.logger.Warn("partial mentions error", "title", e.Title, "detail", e.Detail)
	}

	return lo.FilterMap(raw.Tweets, func(t *gotwitter.TweetObj, _ int) (types.InboundMessage, bool) {
		if t == nil {
			return types.InboundMessage{}, false
		}
		created, err := time.Parse(time.RFC3339, t.CreatedAt)
		if err != nil {
			c.logger.Warn("bad tweet timestamp", "tweet_id", t.ID, "created_at", t.CreatedAt)
		}
		return types.InboundMessage{
			ID:           t.ID,
			Platform:     types.PlatformX,
			Text:         t.Text,
			SenderHandle: handles[t.AuthorID],
			ReceivedAt:   created,
		}, true
	})
}

// PostReply posts text threaded under the mention
func (c *Client) PostReply(ctx context.Context, inReplyTo types.InboundMessage, text string) error {
	return c.post(ctx, gotwitter.CreateTweetRequest{
		Text:  text,
		Reply: &gotwitter.CreateTweetReply{InReplyToTweetID: inReplyTo.ID},
	})
}

// Publish posts a standalone tweet
func (c *Client) Publish(ctx context.Context, text string) error {
	return c.post(ctx, gotwitter.CreateTweetRequest{Text: text})
}

func (c *Client) post(ctx context.Context, tweet gotwitter.CreateTweetRequest) error {
	resp, err := c.api.CreateTweet(ctx, tweet)
	if err != nil {
		return fmt.Errorf("posting tweet: %w", apiError(err))
	}
	id := ""
	if resp.Tweet != nil {
		id = resp.Tweet.ID
	}
	c.logger.Info("tweet posted", "tweet_id", id, "reply", tweet.Reply != nil)
	return nil
}
