package moltbook

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestExtractCommentsShapes(t *testing.T) {
	// Flat list under "comments".
	flat := decode(t, `{"comments":[{"id":"c1","content":"hi","author":{"id":"a1","name":"Ada"}}]}`)
	got := ExtractComments(flat)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "Ada", got[0].Author.Name)

	// Nested under data.comments, camelCase fields, author under "agent".
	nested := decode(t, `{"data":{"comments":[
		{"id":"c2","content":"yo","parentId":"c1","createdAt":"2026-01-02","agent":{"id":"a2","name":"Bob"}}
	]}}`)
	got = ExtractComments(nested)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ParentID)
	assert.Equal(t, "2026-01-02", got[0].CreatedAt)
	assert.Equal(t, "a2", got[0].Author.ID)

	// Items list; entries without an id are dropped.
	items := decode(t, `{"items":[{"content":"no id"},{"id":"c3","content":"ok"}]}`)
	got = ExtractComments(items)
	require.Len(t, got, 1)
	assert.Equal(t, "c3", got[0].ID)

	assert.Empty(t, ExtractComments(nil))
	assert.Empty(t, ExtractComments(decode(t, `{"unrelated":true}`)))
}

func TestExtractProfilePosts(t *testing.T) {
	profile := decode(t, `{"recentPosts":[{"id":"p1","title":"Update"},{"title":"no id"}]}`)
	posts := ExtractProfilePosts(profile)
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].ID)
}

func TestInferRespondedTo(t *testing.T) {
	comments := []Comment{
		{ID: "c1", Author: Agent{ID: "other"}},
		{ID: "r1", ParentID: "c1", Author: Agent{ID: "me"}},
		{ID: "r2", ParentID: "", Author: Agent{ID: "me"}},
		{ID: "r3", ParentID: "c2", Author: Agent{ID: "other"}},
	}
	responded := InferRespondedTo(comments, "me")
	assert.Len(t, responded, 1)
	_, ok := responded["c1"]
	assert.True(t, ok)

	// Unknown own id means nothing can be inferred.
	assert.Empty(t, InferRespondedTo(comments, ""))
}
