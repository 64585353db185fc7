package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SessionScreener/internal/activation"
	"SessionScreener/internal/catalog"
	"SessionScreener/internal/model"
)

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []string
	updates  string
	failSend bool
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.URL.Path {
		case "/botTOKEN/sendMessage":
			if f.failSend {
				http.Error(w, "nope", http.StatusTooManyRequests)
				return
			}
			var payload map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "42", payload["chat_id"])
			f.sent = append(f.sent, payload["text"])
			fmt.Fprint(w, `{"ok":true}`)
		case "/botTOKEN/getUpdates":
			fmt.Fprint(w, f.updates)
			f.updates = `{"ok":true,"result":[]}`
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestNotifier(t *testing.T, fake *fakeTelegram) *TelegramNotifier {
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestSend(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake)
	require.NoError(t, n.Send(context.Background(), "hello"))
	assert.Equal(t, []string{"hello"}, fake.sent)

	fake.failSend = true
	err := n.Send(context.Background(), "x")
	assert.ErrorContains(t, err, "status 429")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "nope", apiErr.Description)
}

func TestSend_SplitsLongMessages(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake)

	line := strings.Repeat("a", 99) + "\n"
	require.NoError(t, n.Send(context.Background(), strings.Repeat(line, 50)))
	require.Len(t, fake.sent, 2)
	assert.Len(t, fake.sent[0], 4000)
	assert.Len(t, fake.sent[1], 1000)
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))
	assert.Equal(t, []string{"abc\n", "defg\n", "hi"}, splitMessage("abc\ndefg\nhi", 6))
	assert.Equal(t, []string{"abcde", "fghij", "k"}, splitMessage("abcdefghijk", 5))
	assert.Equal(t, []string{"héé", "llo"}, splitMessage("hééllo", 3))
}

func TestSendWithRetry_RetryAfter(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"ok":false,"description":"Too Many Requests: retry after 0","parameters":{"retry_after":0}}`)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	require.NoError(t, n.SendWithRetry(context.Background(), "x", 1))
	assert.Equal(t, 2, calls)
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	fake := &fakeTelegram{failSend: true}
	n := newTestNotifier(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.SendWithRetry(ctx, "x", 3)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPoll_DispatchesKnownChatOnly(t *testing.T) {
	fake := &fakeTelegram{updates: `{"ok":true,"result":[
		{"update_id":7,"message":{"text":" /last ","chat":{"id":42}}},
		{"update_id":8,"message":{"text":"/run","chat":{"id":99}}}]}`}
	n := newTestNotifier(t, fake)

	var got []string
	next, err := n.poll(context.Background(), http.DefaultClient, 0, func(cmd string) string {
		got = append(got, cmd)
		return "reply to " + cmd
	})
	require.NoError(t, err)
	assert.Equal(t, 9, next)
	assert.Equal(t, []string{"/last"}, got)
	assert.Equal(t, []string{"reply to /last"}, fake.sent)
}

func TestFormatRun(t *testing.T) {
	run := &model.Run{
		ScreeningDate: model.NewDate(2025, 3, 10),
		Selected:      []string{"AAA", "BBB"},
		Active:        1,
		Results:       []model.Result{{Serial: 1, TickerIndex: 1, Ticker: "AAA", Anchor: 100}},
		Outcomes:      []model.TickerOutcome{{Status: model.OutcomeMatched}, {Status: model.OutcomeRejected}},
	}
	msg := FormatRun(run)
	assert.Contains(t, msg, "2025-03-10")
	assert.Contains(t, msg, "Matched: 1 | Rejected: 1 | Skipped: 0")
	assert.Contains(t, msg, "1. TickerNo:1 - AAA - Open16h: 100")

	run.Results = nil
	assert.Contains(t, FormatRun(run), "No matches.")
}

func TestFormatConditions(t *testing.T) {
	set := activation.NewSet(map[int]activation.Mode{3: activation.Normal, 20: activation.Inverted})
	msg := FormatConditions(catalog.Default(), set)
	assert.Contains(t, msg, "3. Close 4h ≥ Open 4h")
	assert.Contains(t, msg, "20. NOT(Low 5h ≤ Low 4h) [&gt;]")

	assert.Contains(t, FormatConditions(catalog.Default(), activation.NewSet(nil)), "No active conditions")
}
