package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

//go:generate mockgen -source=discord_client.go -destination=mocks/mock_discord_client.go -package=mocks

var (
	// ErrUnauthorized is returned when Discord rejects an operator token or
	// an authorization code.
	ErrUnauthorized = errors.New("discord rejected the credentials")
	// ErrNotMember is returned when the operator is not in the console's server.
	ErrNotMember = errors.New("operator is not a member of the server")
)

// RequestError carries a non-2xx Discord response.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("discord %s answered %d: %s", e.Endpoint, e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotMember:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Message is a channel post; the console only sends embeds.
type Message struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds"`
}

type Embed struct {
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type OAuthToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

type Member struct {
	User  User     `json:"user"`
	Roles []string `json:"roles"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

const (
	DefaultBaseURL   = "https://discord.com/api/v10"
	DefaultMemberTTL = time.Minute
)

type DiscordClient interface {
	SendMessage(ctx context.Context, channelID string, message Message) error
	GetOAuth2Token(ctx context.Context, code string) (*OAuthToken, error)
	GetGuildMember(ctx context.Context, accessToken string) (*Member, error)
}

// Credentials configure the bot and the OAuth2 application behind the console.
type Credentials struct {
	BotToken     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	ServerID     string
	// MemberTTL bounds how long a resolved operator is trusted without
	// asking Discord again. Zero means DefaultMemberTTL.
	MemberTTL time.Duration
}

type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
	members *cache.Cache
}

func NewClient(baseURL string, creds Credentials) *Client {
	if len(baseURL) == 0 {
		baseURL = DefaultBaseURL
	}

	if creds.MemberTTL <= 0 {
		creds.MemberTTL = DefaultMemberTTL
	}

	return &Client{
		baseURL: baseURL,
		creds:   creds,
		http:    &http.Client{Timeout: 10 * time.Second},
		members: cache.New(creds.MemberTTL, 5*creds.MemberTTL),
	}
}

// SendMessage posts a message to a channel as the bot.
func (c *Client) SendMessage(ctx context.Context, channelID string, message Message) error {
	if len(strings.TrimSpace(channelID)) == 0 {
		return errors.New("discord channel id is empty")
	}

	body, err := json.Marshal(message)

	if err != nil {
		return fmt.Errorf("failed to encode discord message: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, bytes.NewReader(body), "channels", channelID, "messages")

	if err != nil {
		return err
	}

	c.asBot(req)

	return c.send(req, nil)
}

// GetOAuth2Token exchanges the authorization code of an operator login.
func (c *Client) GetOAuth2Token(ctx context.Context, code string) (*OAuthToken, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {c.creds.ClientID},
		"client_secret": {c.creds.ClientSecret},
		"redirect_uri":  {c.creds.RedirectURI},
		"grant_type":    {"authorization_code"},
	}

	req, err := c.newRequest(ctx, http.MethodPost, strings.NewReader(form.Encode()), "oauth2", "token")

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token OAuthToken

	if err := c.send(req, &token); err != nil {
		// Discord answers 400 invalid_grant for a stale or replayed code.
		var reqErr *RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return nil, err
	}

	return &token, nil
}

// GetGuildMember resolves the server membership behind an operator access
// token. Members are cached per token for the configured MemberTTL.
func (c *Client) GetGuildMember(ctx context.Context, accessToken string) (*Member, error) {
	if member, found := c.members.Get(accessToken); found {
		return member.(*Member), nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, http.NoBody, "users", "@me", "guilds", c.creds.ServerID, "member")

	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	var member Member

	if err := c.send(req, &member); err != nil {
		return nil, err
	}

	c.members.Set(accessToken, &member, cache.DefaultExpiration)

	return &member, nil
}

func (c *Client) newRequest(ctx context.Context, method string, body io.Reader, elem ...string) (*http.Request, error) {
	endpoint, err := url.JoinPath(c.baseURL, elem...)

	if err != nil {
		return nil, fmt.Errorf("invalid discord endpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)

	if err != nil {
		return nil, fmt.Errorf("failed to build discord request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (c *Client) asBot(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.creds.BotToken)
}

// send performs req and decodes a 2xx body into out when out is not nil.
func (c *Client) send(req *http.Request, out any) error {
	res, err := c.http.Do(req)

	if err != nil {
		return fmt.Errorf("discord unreachable: %w", err)
	}

	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))

	if err != nil {
		return fmt.Errorf("failed to read discord response: %w", err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return &RequestError{Endpoint: req.URL.Path, StatusCode: res.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode discord response: %w", err)
	}

	return nil
}
