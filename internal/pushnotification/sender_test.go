package pushnotification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/wetracker/internal/config"
	"github.com/kazz187/wetracker/internal/notification"
	"github.com/kazz187/wetracker/internal/profile"
	"github.com/kazz187/wetracker/internal/pushsubscription"
	subimpl "github.com/kazz187/wetracker/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/wetracker/pkg/storage"
)

var testVAPID = &config.VAPIDEnv{
	VAPIDPublicKey:  "public",
	VAPIDPrivateKey: "private",
	VAPIDContact:    "mailto:ops@example.com",
}

func newSubRepo(t *testing.T, subs ...*pushsubscription.Subscription) pushsubscription.Repository {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := subimpl.NewYAMLRepository(local)
	for _, s := range subs {
		require.NoError(t, repo.Create(context.Background(), s))
	}
	return repo
}

func response(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(""))}
}

func testMessage() *notification.Message {
	return &notification.Message{
		Kind:      notification.KindTaskAssigned,
		TaskID:    "abc123",
		TaskURL:   "http://localhost:3000/tasks/abc123",
		Recipient: &profile.Profile{ID: "bob"},
		Content:   &notification.Content{Subject: "[WE Tracker] Sarah assigned you: Review"},
	}
}

func TestSender_Notify(t *testing.T) {
	repo := newSubRepo(t,
		&pushsubscription.Subscription{ID: "s1", ProfileID: "bob", Endpoint: "https://push.example.com/live"},
		&pushsubscription.Subscription{ID: "s2", ProfileID: "bob", Endpoint: "https://push.example.com/gone"},
		&pushsubscription.Subscription{ID: "s3", ProfileID: "alice", Endpoint: "https://push.example.com/alice"},
	)

	var endpoints []string
	var payload NotificationPayload
	s := NewSender(testVAPID, repo, "WE Tracker")
	s.send = func(_ context.Context, msg []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		endpoints = append(endpoints, sub.Endpoint)
		require.NoError(t, json.Unmarshal(msg, &payload))
		assert.Equal(t, "private", opts.VAPIDPrivateKey)
		if strings.HasSuffix(sub.Endpoint, "/gone") {
			return response(http.StatusGone), nil
		}
		return response(http.StatusCreated), nil
	}

	require.NoError(t, s.Notify(context.Background(), testMessage()))
	assert.ElementsMatch(t, []string{"https://push.example.com/live", "https://push.example.com/gone"}, endpoints)
	assert.Equal(t, NotificationPayload{
		Title: "WE Tracker",
		Body:  "[WE Tracker] Sarah assigned you: Review",
		URL:   "http://localhost:3000/tasks/abc123",
		Tag:   "abc123",
	}, payload)

	left, err := repo.ListByProfile(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "s1", left[0].ID)
}

func TestSender_Errors(t *testing.T) {
	repo := newSubRepo(t,
		&pushsubscription.Subscription{ID: "s1", ProfileID: "bob", Endpoint: "https://push.example.com/a"},
		&pushsubscription.Subscription{ID: "s2", ProfileID: "bob", Endpoint: "https://push.example.com/b"},
	)
	calls := 0
	s := NewSender(testVAPID, repo, "WE Tracker")
	s.send = func(_ context.Context, _ []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
		calls++
		if strings.HasSuffix(sub.Endpoint, "/a") {
			return nil, errors.New("connection reset")
		}
		return response(http.StatusTooManyRequests), nil
	}

	err := s.Notify(context.Background(), testMessage())
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Contains(t, err.Error(), "429")
}

func TestSender_Unconfigured(t *testing.T) {
	s := NewSender(&config.VAPIDEnv{}, newSubRepo(t, &pushsubscription.Subscription{ID: "s1", ProfileID: "bob", Endpoint: "e"}), "WE Tracker")
	s.send = func(context.Context, []byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
		t.Fatal("send must not be called")
		return nil, nil
	}
	assert.NoError(t, s.Notify(context.Background(), testMessage()))
}
