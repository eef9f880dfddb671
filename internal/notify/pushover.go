package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/ticket-watcher/internal/metrics"
)

const (
	defaultPushoverURL = "https://api.pushover.net/1/messages.json"

	// Pushover rejects attachments larger than 5MB.
	maxAttachmentBytes = 5 << 20

	emergencyPriority = 2
)

// PushoverNotifier implements Notifier via the Pushover messages API.
type PushoverNotifier struct {
	user        string
	token       string
	apiURL      string
	html        bool
	attachImage bool
	client      *http.Client
	log         *slog.Logger
}

// PushoverOption configures a PushoverNotifier.
type PushoverOption func(*PushoverNotifier)

// WithPushoverURL overrides the messages endpoint.
func WithPushoverURL(u string) PushoverOption {
	return func(p *PushoverNotifier) {
		if u != "" {
			p.apiURL = u
		}
	}
}

// WithPushoverHTTPClient sets a custom HTTP client.
func WithPushoverHTTPClient(c *http.Client) PushoverOption {
	return func(p *PushoverNotifier) {
		p.client = c
	}
}

// WithHTML renders the Markdown body to HTML and sets html=1.
func WithHTML(enabled bool) PushoverOption {
	return func(p *PushoverNotifier) {
		p.html = enabled
	}
}

// WithImageAttachment downloads the payload image and attaches it.
func WithImageAttachment(enabled bool) PushoverOption {
	return func(p *PushoverNotifier) {
		p.attachImage = enabled
	}
}

// WithPushoverLogger sets the logger used for attachment warnings.
func WithPushoverLogger(l *slog.Logger) PushoverOption {
	return func(p *PushoverNotifier) {
		p.log = l
	}
}

// NewPushoverNotifier creates a new PushoverNotifier for the given user key
// and application token.
func NewPushoverNotifier(user, token string, opts ...PushoverOption) *PushoverNotifier {
	p := &PushoverNotifier{
		user:   user,
		token:  token,
		apiURL: defaultPushoverURL,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type pushoverResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

// Send delivers the payload as a single Pushover message.
func (p *PushoverNotifier) Send(ctx context.Context, payload *Payload) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	form, err := p.buildForm(ctx, payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.apiURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("creating pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending pushover message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("pushover returned %d (body unreadable)", resp.StatusCode)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("pushover rate limited (429)")
	}

	var pr pushoverResponse
	if jsonErr := json.Unmarshal(body, &pr); jsonErr != nil {
		return fmt.Errorf("pushover returned %d: %s", resp.StatusCode, body)
	}

	if resp.StatusCode != http.StatusOK || pr.Status != 1 {
		return fmt.Errorf("pushover returned %d: %s", resp.StatusCode, strings.Join(pr.Errors, "; "))
	}

	return nil
}

func (p *PushoverNotifier) buildForm(ctx context.Context, payload *Payload) (url.Values, error) {
	form := url.Values{}
	form.Set("token", p.token)
	form.Set("user", p.user)
	form.Set("title", payload.Title)

	message := payload.Body
	if p.html {
		rendered, err := RenderHTML(payload.Body)
		if err != nil {
			return nil, err
		}
		message = rendered
		form.Set("html", "1")
	}
	form.Set("message", message)

	if payload.URL != "" {
		form.Set("url", payload.URL)
		if payload.URLTitle != "" {
			form.Set("url_title", payload.URLTitle)
		}
	}
	if !payload.Timestamp.IsZero() {
		form.Set("timestamp", strconv.FormatInt(payload.Timestamp.Unix(), 10))
	}
	if payload.Sound != "" {
		form.Set("sound", payload.Sound)
	}

	form.Set("priority", strconv.Itoa(payload.Priority))
	if payload.Priority == emergencyPriority {
		form.Set("expire", strconv.Itoa(payload.Expire))
		form.Set("retry", strconv.Itoa(payload.Retry))
	}

	if p.attachImage && payload.ImageURL != "" {
		data, contentType, err := p.fetchImage(ctx, payload.ImageURL)
		if err != nil {
			// A missing poster never blocks the message itself.
			p.log.Warn("skipping pushover attachment", "image", payload.ImageURL, "error", err)
		} else {
			form.Set("attachment_base64", base64.StdEncoding.EncodeToString(data))
			form.Set("attachment_type", contentType)
		}
	}

	return form, nil
}

func (p *PushoverNotifier) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("creating image request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading image: %w", err)
	}
	if len(data) > maxAttachmentBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxAttachmentBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
