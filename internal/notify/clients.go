package notify

import (
	"context"
	"fmt"
	"strings"

	"launchScope/internal/adapter"
)

// ArenaClient posts to the Arena timeline with a bearer token.
type ArenaClient struct {
	http     *adapter.HTTPClient
	endpoint string
	token    string
}

// NewArenaClient posts to {baseURL}/threads.
func NewArenaClient(httpClient *adapter.HTTPClient, baseURL, token string) *ArenaClient {
	return &ArenaClient{
		http:     httpClient,
		endpoint: strings.TrimRight(baseURL, "/") + "/threads",
		token:    token,
	}
}

type arenaThread struct {
	Content string   `json:"content"`
	Files   []string `json:"files"`
}

func (c *ArenaClient) Post(ctx context.Context, content string) error {
	if c.token == "" {
		return fmt.Errorf("arena token not configured")
	}
	payload := arenaThread{Content: content, Files: []string{}}
	if err := c.http.PostJSON(ctx, c.endpoint, adapter.BearerHeaders(c.token), payload, nil); err != nil {
		return fmt.Errorf("arena post: %w", err)
	}
	return nil
}

// DiscordMessage is a webhook payload with a single embed.
type DiscordMessage struct {
	Username string         `json:"username,omitempty"`
	Content  string         `json:"content,omitempty"`
	Embeds   []DiscordEmbed `json:"embeds,omitempty"`
}

type DiscordEmbed struct {
	Title       string         `json:"title"`
	URL         string         `json:"url,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []DiscordField `json:"fields,omitempty"`
	Thumbnail   *DiscordImage  `json:"thumbnail,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type DiscordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordImage struct {
	URL string `json:"url"`
}

// DiscordClient posts messages to webhook URLs.
type DiscordClient struct {
	http *adapter.HTTPClient
}

func NewDiscordClient(httpClient *adapter.HTTPClient) *DiscordClient {
	return &DiscordClient{http: httpClient}
}

func (c *DiscordClient) Post(ctx context.Context, webhookURL string, msg DiscordMessage) error {
	if err := c.http.PostJSON(ctx, webhookURL, nil, msg, nil); err != nil {
		return fmt.Errorf("discord post: %w", err)
	}
	return nil
}
