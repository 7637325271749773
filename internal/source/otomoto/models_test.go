package otomoto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePhotosOrdersByIndex(t *testing.T) {
	photos := decodePhotos(map[string]map[string]string{
		"10":  {"original": "ten"},
		"2":   {"original": "two"},
		"1":   {"original": "one"},
		"bad": {"original": "ignored"},
	})

	require.Len(t, photos, 3)
	assert.Equal(t, "one", photos[0].URLs["original"])
	assert.Equal(t, "two", photos[1].URLs["original"])
	assert.Equal(t, "ten", photos[2].URLs["original"])
}

func TestParamStringCoercions(t *testing.T) {
	assert.Equal(t, "diesel", paramString(json.RawMessage(`"diesel"`)))
	assert.Equal(t, "2018", paramString(json.RawMessage(`2018`)))
	assert.Equal(t, "550000.5", paramString(json.RawMessage(`550000.5`)))
	assert.Equal(t, "true", paramString(json.RawMessage(`true`)))
	assert.Equal(t, "", paramString(json.RawMessage(`{"nested":1}`)))
	assert.Equal(t, "", paramString(nil))
}

func TestToDomainNormalizesZeroID(t *testing.T) {
	var payload advertPayload
	require.NoError(t, json.Unmarshal([]byte(`{"id":0,"title":"x"}`), &payload))

	adv := payload.toDomain()
	assert.Empty(t, adv.ID)
}

func TestToDomainLowercasesCondition(t *testing.T) {
	var payload advertPayload
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"new_used":"Used"}`), &payload))

	adv := payload.toDomain()
	assert.Equal(t, "used", adv.Condition)
}
