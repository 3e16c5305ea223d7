// Package whatsapp sends text messages through an Evolution API gateway.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	kdb "github.com/opst/taskboard/pkg/db"
)

var (
	ErrNotConfigured = errors.New("whatsapp gateway is not configured")
	ErrSendFailed    = errors.New("failed to send a message")
)

type options struct {
	Delay       int    `json:"delay"`
	Presence    string `json:"presence"`
	LinkPreview bool   `json:"linkPreview"`
}

type textMessage struct {
	Text string `json:"text"`
}

type sendText struct {
	Number      string      `json:"number"`
	Options     options     `json:"options"`
	Text        string      `json:"text"`
	TextMessage textMessage `json:"textMessage"`
}

// Sender sends a text message to the number.
type Sender interface {
	SendText(ctx context.Context, settings kdb.Settings, number string, text string) error
}

type Client struct {
	http   *http.Client
	logger *log.Logger
}

type Option func(*Client) *Client

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) *Client {
		c.http = hc
		return c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) *Client {
		c.logger = l
		return c
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		c = o(c)
	}
	return c
}

var _ Sender = &Client{}

// SendText posts the text to {ApiUrl}/message/sendText/{InstanceName}.
//
// # Returns
//
// - error: ErrNotConfigured when ApiUrl or ApiKey is empty.
// ErrSendFailed when the gateway responds non-2xx status.
func (c *Client) SendText(ctx context.Context, settings kdb.Settings, number string, text string) error {
	base := settings.BaseUrl()
	if base == "" || settings.ApiKey == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(sendText{
		Number:      number,
		Options:     options{Delay: 1200, Presence: "composing", LinkPreview: false},
		Text:        text,
		TextMessage: textMessage{Text: text},
	})
	if err != nil {
		return err
	}

	endpoint := base + "/message/sendText/" + url.PathEscape(settings.InstanceName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", settings.ApiKey)

	c.logger.Printf("sending message to %s", number)
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(err, ErrSendFailed)
	}
	defer resp.Body.Close()

	if 200 <= resp.StatusCode && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf(
		"%w (%s %d): %s",
		ErrSendFailed, endpoint, resp.StatusCode, strings.TrimSpace(string(body)),
	)
}
