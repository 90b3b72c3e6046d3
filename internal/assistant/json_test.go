package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeModelJSON_Plain(t *testing.T) {
	var parsed rawIntent
	err := decodeModelJSON(`{"type":"conversation","answer":"hi","show_memories":false}`, &parsed)
	require.NoError(t, err)
	assert.Equal(t, "conversation", parsed.Type)
	assert.Equal(t, "hi", parsed.Answer)
}

func TestDecodeModelJSON_FencedEqualsUnfenced(t *testing.T) {
	fenced := "```json\n{\"type\":\"conversation\",\"answer\":\"hi\",\"show_memories\":false}\n```"
	plain := `{"type":"conversation","answer":"hi","show_memories":false}`

	var fromFenced, fromPlain rawIntent
	require.NoError(t, decodeModelJSON(fenced, &fromFenced))
	require.NoError(t, decodeModelJSON(plain, &fromPlain))
	assert.Equal(t, fromPlain, fromFenced)
}

func TestDecodeModelJSON_SurroundingProse(t *testing.T) {
	raw := "Sure! Here is the classification you asked for:\n" +
		`{"type":"list_all","answer":"Here is everyone"} Hope that helps.`

	var parsed rawIntent
	require.NoError(t, decodeModelJSON(raw, &parsed))
	assert.Equal(t, "list_all", parsed.Type)
}

func TestDecodeModelJSON_NestedBracesAndStrings(t *testing.T) {
	raw := `prefix {"type":"conversation","answer":"use {curly} braces \" here"} suffix`

	var parsed rawIntent
	require.NoError(t, decodeModelJSON(raw, &parsed))
	assert.Equal(t, `use {curly} braces " here`, parsed.Answer)
}

func TestDecodeModelJSON_NoObject(t *testing.T) {
	var parsed rawIntent
	err := decodeModelJSON("I could not decide, sorry.", &parsed)
	assert.Error(t, err)
}

func TestDecodeModelJSON_UnbalancedObject(t *testing.T) {
	var parsed rawIntent
	err := decodeModelJSON(`{"type":"conversation","answer":"hi"`, &parsed)
	assert.Error(t, err)
}

func TestFirstJSONObject(t *testing.T) {
	span, ok := firstJSONObject(`junk {"a":{"b":1}} {"c":2}`)
	require.True(t, ok)
	assert.Equal(t, `{"a":{"b":1}}`, span)

	_, ok = firstJSONObject("no braces at all")
	assert.False(t, ok)
}
