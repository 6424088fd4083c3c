package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const getAvatarBody = `{
  "data": {
    "id": "a1",
    "type": "avatar",
    "attributes": {"name": "Emma", "height": 180, "weight": "75", "gender": "female", "state": "READY", "origin": "from-images"}
  },
  "included": [
    {"id": "img", "type": "image", "attributes": {"url": {"path": "https://cdn.example.com/a1.jpg"}}},
    {"id": "m1", "type": "asset", "attributes": {"url": {"path": "https://s3.example.com/a1.fbx?sig=1"}}},
    {"id": "m2", "type": "asset", "attributes": {"url": {"path": "https://s3.example.com/a1.OBJ?sig=2"}}},
    {"id": "m3", "type": "asset", "attributes": {}}
  ]
}`

func TestAvatarFromResource(t *testing.T) {
	t.Parallel()
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(getAvatarBody), &doc))

	a, err := AvatarFromResource(doc.Data, doc.Included)
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, "avatar", a.Type)
	assert.Equal(t, "Emma", a.Name)
	assert.Equal(t, 180, a.Height)
	assert.Equal(t, 75, a.Weight)
	assert.Equal(t, GenderFemale, a.Gender)
	assert.True(t, a.Ready())
	assert.False(t, a.Failed())
	assert.Equal(t, "from-images", a.Attributes["origin"])

	require.Len(t, a.Assets, 2)
	assert.Equal(t, ".fbx", a.Assets[0].Ext())
	assert.Equal(t, ".obj", a.Assets[1].Ext())
}

func TestAvatarFromResource_LegacyNameField(t *testing.T) {
	t.Parallel()
	a, err := AvatarFromResource(Resource{ID: "a2", Attributes: map[string]any{"avatarname": "Legacy", "state": "ERROR"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Legacy", a.Name)
	assert.True(t, a.Failed())
	assert.Empty(t, a.Assets)
}
