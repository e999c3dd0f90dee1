package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessagePostsForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/Accounts/AC123/Messages.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+254712345678", r.PostForm.Get("To"))
		assert.Equal(t, "+15005550006", r.PostForm.Get("From"))
		assert.Equal(t, "hello", r.PostForm.Get("Body"))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "AC123", "secret", "+15005550006")
	resp, err := client.SendMessage(context.Background(), "+254712345678", "hello")

	require.NoError(t, err)
	assert.Equal(t, "SM1", resp.SID)
	assert.Equal(t, "queued", resp.Status)
}

func TestSendMessageGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
	}))
	defer server.Close()

	err := NewClient(server.URL, "AC123", "secret", "+1").Send(context.Background(), "+1", "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid 'To' Phone Number")
}

func TestSendMessageNonJSONGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable\n"))
	}))
	defer server.Close()

	err := NewClient(server.URL, "AC123", "secret", "+1").Send(context.Background(), "+1", "x")

	require.Error(t, err)
	assert.Equal(t, "sms gateway returned 502: upstream unavailable", err.Error())
}
