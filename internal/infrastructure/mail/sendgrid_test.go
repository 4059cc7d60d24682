package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   []byte
}

func newSendGridServer(t *testing.T, status int) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		rec.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestSendGridClient_NotConfigured(t *testing.T) {
	c := NewSendGridClient(config.SendGridConfig{}, nil)
	assert.False(t, c.Configured())
	assert.ErrorIs(t, c.AddContact(context.Background(), "a@b.co"), shared.ErrUnavailable)
	assert.ErrorIs(t, c.Send(context.Background(), Message{To: "a@b.co"}), shared.ErrUnavailable)
}

func TestSendGridClient_AddContact(t *testing.T) {
	srv, rec := newSendGridServer(t, http.StatusAccepted)
	c := NewSendGridClient(config.SendGridConfig{APIKey: "SG.test", ListID: "list-1", BaseURL: srv.URL}, nil)

	require.NoError(t, c.AddContact(context.Background(), "farmer@example.com"))
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/v3/marketing/contacts", rec.path)
	assert.Equal(t, "Bearer SG.test", rec.auth)

	var body contactsRequest
	require.NoError(t, json.Unmarshal(rec.body, &body))
	assert.Equal(t, []string{"list-1"}, body.ListIDs)
	require.Len(t, body.Contacts, 1)
	assert.Equal(t, "farmer@example.com", body.Contacts[0].Email)
}

func TestSendGridClient_ProviderError(t *testing.T) {
	srv, _ := newSendGridServer(t, http.StatusBadRequest)
	c := NewSendGridClient(config.SendGridConfig{APIKey: "SG.test", BaseURL: srv.URL}, nil)

	assert.Error(t, c.AddContact(context.Background(), "farmer@example.com"))
}

func TestSendGridClient_Send(t *testing.T) {
	srv, rec := newSendGridServer(t, http.StatusAccepted)
	c := NewSendGridClient(config.SendGridConfig{
		APIKey:    "SG.test",
		FromEmail: "no-reply@agromart.example",
		FromName:  "AgroMart",
		BaseURL:   srv.URL,
	}, nil)

	err := c.Send(context.Background(), Message{To: "farmer@example.com", Subject: "Reset your password", Text: "link"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/v3/mail/send", rec.path)
	assert.Contains(t, string(rec.body), "Reset your password")
	assert.Contains(t, string(rec.body), "no-reply@agromart.example")

	assert.Error(t, c.Send(context.Background(), Message{}))
}
