package notify

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pushoverRecorder is a fake Pushover API that records the last form it saw.
type pushoverRecorder struct {
	mu   sync.Mutex
	form url.Values
}

func (r *pushoverRecorder) handler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseForm(); err == nil {
			r.mu.Lock()
			r.form = req.PostForm
			r.mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (r *pushoverRecorder) last() url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.form
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPushoverNotifier_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		respBody   string
		wantErr    bool
		errMsg     string
	}{
		{
			name:       "accepted",
			statusCode: http.StatusOK,
			respBody:   `{"status":1,"request":"647d2300-702c-4b38-8b2f-d56326ae460b"}`,
		},
		{
			name:       "invalid token",
			statusCode: http.StatusBadRequest,
			respBody:   `{"token":"invalid","errors":["application token is invalid"],"status":0}`,
			wantErr:    true,
			errMsg:     "application token is invalid",
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			respBody:   `{}`,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "non json error page",
			statusCode: http.StatusBadGateway,
			respBody:   `<html>bad gateway</html>`,
			wantErr:    true,
			errMsg:     "pushover returned 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &pushoverRecorder{}
			srv := httptest.NewServer(rec.handler(tt.statusCode, tt.respBody))
			defer srv.Close()

			p := NewPushoverNotifier("user-key", "app-token", WithPushoverURL(srv.URL))
			payload := testPayload(KindSuccess)
			err := p.Send(context.Background(), &payload)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)

			form := rec.last()
			assert.Equal(t, "app-token", form.Get("token"))
			assert.Equal(t, "user-key", form.Get("user"))
			assert.Equal(t, "Tickets available!", form.Get("title"))
			assert.Equal(t, payload.Body, form.Get("message"))
			assert.Empty(t, form.Get("html"))
			assert.Equal(t, payload.URL, form.Get("url"))
			assert.Equal(t, "Oppenheimer (Movie page)", form.Get("url_title"))
			assert.Equal(t, "1704099600", form.Get("timestamp"))
			assert.Equal(t, "cosmic", form.Get("sound"))
			assert.Equal(t, "1", form.Get("priority"))
			assert.Empty(t, form.Get("expire"), "expire is only sent for emergency priority")
			assert.Empty(t, form.Get("retry"), "retry is only sent for emergency priority")
			assert.Empty(t, form.Get("attachment_base64"))
		})
	}
}

func TestPushoverNotifier_Send_HTML(t *testing.T) {
	t.Parallel()

	rec := &pushoverRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK, `{"status":1}`))
	defer srv.Close()

	p := NewPushoverNotifier("u", "t", WithPushoverURL(srv.URL), WithHTML(true))
	payload := testPayload(KindSuccess)
	payload.Body = "[Buy tickets](https://www.vuecinemas.nl/kopen/oppenheimer/2)"

	require.NoError(t, p.Send(context.Background(), &payload))

	form := rec.last()
	assert.Equal(t, "1", form.Get("html"))
	assert.Contains(t, form.Get("message"),
		`<a href="https://www.vuecinemas.nl/kopen/oppenheimer/2">Buy tickets</a>`)
}

func TestPushoverNotifier_Send_EmergencyPriority(t *testing.T) {
	t.Parallel()

	rec := &pushoverRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK, `{"status":1}`))
	defer srv.Close()

	p := NewPushoverNotifier("u", "t", WithPushoverURL(srv.URL))
	payload := testPayload(KindFailure)
	payload.Priority = 2
	payload.Sound = "siren"

	require.NoError(t, p.Send(context.Background(), &payload))

	form := rec.last()
	assert.Equal(t, "2", form.Get("priority"))
	assert.Equal(t, "60", form.Get("expire"))
	assert.Equal(t, "30", form.Get("retry"))
	assert.Equal(t, "siren", form.Get("sound"))
}

func TestPushoverNotifier_Send_ImageAttachment(t *testing.T) {
	t.Parallel()

	image := []byte("\x89PNG\r\n\x1a\nfake-image")

	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(image)
	}))
	defer imgSrv.Close()

	rec := &pushoverRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK, `{"status":1}`))
	defer srv.Close()

	p := NewPushoverNotifier("u", "t",
		WithPushoverURL(srv.URL),
		WithImageAttachment(true),
		WithPushoverLogger(quietLogger()),
	)
	payload := testPayload(KindSuccess)
	payload.ImageURL = imgSrv.URL + "/poster.png"

	require.NoError(t, p.Send(context.Background(), &payload))

	form := rec.last()
	assert.Equal(t, "image/png", form.Get("attachment_type"))
	assert.Equal(t, base64.StdEncoding.EncodeToString(image), form.Get("attachment_base64"))
}

func TestPushoverNotifier_Send_BrokenImageStillSends(t *testing.T) {
	t.Parallel()

	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer imgSrv.Close()

	rec := &pushoverRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK, `{"status":1}`))
	defer srv.Close()

	p := NewPushoverNotifier("u", "t",
		WithPushoverURL(srv.URL),
		WithImageAttachment(true),
		WithPushoverLogger(quietLogger()),
	)
	payload := testPayload(KindSuccess)
	payload.ImageURL = imgSrv.URL + "/missing.png"

	require.NoError(t, p.Send(context.Background(), &payload))

	form := rec.last()
	assert.Equal(t, "Tickets available!", form.Get("title"))
	assert.Empty(t, form.Get("attachment_base64"))
}

func TestPushoverNotifier_NetworkError(t *testing.T) {
	t.Parallel()

	p := NewPushoverNotifier("u", "t", WithPushoverURL("http://127.0.0.1:1"))
	payload := testPayload(KindFailure)
	err := p.Send(context.Background(), &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending pushover message")
}

func TestWithPushoverHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	p := NewPushoverNotifier("u", "t", WithPushoverHTTPClient(custom))
	assert.Same(t, custom, p.client)
	assert.Equal(t, defaultPushoverURL, p.apiURL)
}
