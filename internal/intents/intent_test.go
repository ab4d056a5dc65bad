package intents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoodmarket/ticket-bot/internal/domain"
)

func TestParseCreateRequest(t *testing.T) {
	raw := []byte(`{
		"kind": "create_request",
		"payload": {
			"requester_id": "u1",
			"requester_name": "Alice",
			"category": "services",
			"description": "logo design"
		}
	}`)

	intent, err := Parse(raw)
	require.NoError(t, err)

	create, ok := intent.(*CreateRequest)
	require.True(t, ok)
	assert.Equal(t, "u1", create.RequesterID)
	assert.Equal(t, "Alice", create.RequesterName)
	assert.Equal(t, domain.CategoryServices, create.Category)
	assert.Equal(t, "logo design", create.Description)
	assert.Equal(t, KindCreateRequest, create.Kind())
}

func TestParseAllKinds(t *testing.T) {
	cases := []struct {
		raw  string
		want Kind
	}{
		{`{"kind":"create_request","payload":{"requester_id":"u1"}}`, KindCreateRequest},
		{`{"kind":"close_request","payload":{"channel_ref":"c1"}}`, KindCloseRequest},
		{`{"kind":"confirm_close","payload":{"channel_ref":"c1","actor_name":"Staffer"}}`, KindConfirmClose},
		{`{"kind":"cancel_close","payload":{"channel_ref":"c1"}}`, KindCancelClose},
		{`{"kind":"rating_selected","payload":{"requester_id":"u1","rating":4}}`, KindRatingSelected},
		{`{"kind":"comment_submitted","payload":{"requester_id":"u1","comment":"nice"}}`, KindCommentSubmitted},
		{`{"kind":"publish_panel","payload":{"channel_ref":"c1"}}`, KindPublishPanel},
		{`{"kind":"reset_tickets","payload":{"actor_id":"op"}}`, KindResetTickets},
	}

	for _, tc := range cases {
		intent, err := Parse([]byte(tc.raw))
		require.NoError(t, err, "kind %s", tc.want)
		assert.Equal(t, tc.want, intent.Kind())
	}
}

func TestParseOmittedPayload(t *testing.T) {
	intent, err := Parse([]byte(`{"kind":"publish_panel"}`))
	require.NoError(t, err)

	panel, ok := intent.(*PublishPanel)
	require.True(t, ok)
	assert.Empty(t, panel.ChannelRef)
}

func TestParseUnknownKind(t *testing.T) {
	_, err := Parse([]byte(`{"kind":"warp_drive","payload":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warp_drive")
}

func TestParseMalformedEnvelope(t *testing.T) {
	_, err := Parse([]byte(`{nope`))
	assert.Error(t, err)
}

func TestParseMalformedPayload(t *testing.T) {
	_, err := Parse([]byte(`{"kind":"rating_selected","payload":{"rating":"five"}}`))
	assert.Error(t, err)
}
