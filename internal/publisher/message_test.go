package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"set_syncer/internal/testutil"
)

func TestNewSetMessage(t *testing.T) {
	set := testutil.MustSet(testutil.Fields("s1", "abc"))
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.FixedZone("X", 3600))

	created := NewSetMessage(set, true, now)
	updated := NewSetMessage(set, false, now)

	assert.Equal(t, ActionCreate, created.Action)
	assert.Equal(t, ActionUpdate, updated.Action)
	assert.Equal(t, time.UTC, created.Timestamp.Location())
	assert.True(t, now.Equal(created.Timestamp))

	_, err := uuid.Parse(created.EventID)
	assert.NoError(t, err)
	assert.NotEqual(t, created.EventID, updated.EventID)
}

func TestSetMessage_JSON(t *testing.T) {
	set := testutil.MustSet(testutil.Fields("s1", "abc"))
	body, err := json.Marshal(NewSetMessage(set, true, time.Now()))
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(body, &generic))
	assert.Equal(t, "create", generic["action"])
	inner, ok := generic["set"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "abc", inner["code"])
	assert.Equal(t, float64(250), inner["card_count"])
	assert.Nil(t, inner["parent_set_code"])

	var decoded SetMessage
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.True(t, set.Equal(decoded.Set))
}
