package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConversation_RejectsNonObjects(t *testing.T) {
	for _, body := range []string{"", "   ", "[]", `"abc"`, "42", "null"} {
		_, err := ParseConversation([]byte(body))
		assert.ErrorIs(t, err, ErrNotObject, "body %q", body)
	}
}

func TestParseConversation_InvalidJSON(t *testing.T) {
	_, err := ParseConversation([]byte(`{"id":`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotObject)
}

func TestConversation_FileStem(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string id", `{"id":"abc"}`, "abc"},
		{"string id kept unescaped", `{"id":"a b/c"}`, "a b/c"},
		{"empty string", `{"id":""}`, ""},
		{"numeric id", `{"id":123}`, "123"},
		{"boolean id", `{"id":true}`, "true"},
		{"null id", `{"id":null}`, "null"},
		{"missing id", `{"messages":[]}`, "undefined"},
		{"quoted null string", `{"id":"null"}`, "null"},
		{"float with zero fraction", `{"id":1.0}`, "1"},
		{"exponent number", `{"id":2e3}`, "2000"},
		{"tiny number", `{"id":1e-7}`, "1e-7"},
		{"huge number", `{"id":1e21}`, "1e+21"},
		{"array id", `{"id":[1,"a",null,[2,3]]}`, "1,a,,2,3"},
		{"object id", `{"id":{"a":1}}`, "[object Object]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := ParseConversation([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.FileStem())
		})
	}
}

func TestConversation_Messages(t *testing.T) {
	c, err := ParseConversation([]byte(`{"id":"abc","messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"yo"}]}`))
	require.NoError(t, err)

	msgs, err := c.Messages()
	require.NoError(t, err)
	assert.Equal(t, []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "yo"},
	}, msgs)

	empty := Conversation{}
	msgs, err = empty.Messages()
	require.NoError(t, err)
	assert.Nil(t, msgs)
}

func TestConversation_MarshalPrettyPreservesFields(t *testing.T) {
	in := `{"id":"abc","title":"Greeting","meta":{"pinned":true,"tags":["a","b"]},"n":12345678901234567890}`
	c, err := ParseConversation([]byte(in))
	require.NoError(t, err)

	out, err := c.MarshalPretty()
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n  \"id\": \"abc\"")
	assert.JSONEq(t, in, string(out))

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "Greeting", back["title"])
}
