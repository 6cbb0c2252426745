package intent_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketgenie/internal/intent"
)

const sampleIntents = `{
	"intents": [
		{"tag": "greeting", "patterns": ["hello", "hi"], "responses": ["👋 Hello! Would you like to book a movie?"]},
		{"tag": "thanks", "patterns": ["thank", "thanks"], "responses": ["You're welcome! 😊"]},
		{"tag": "goodbye", "patterns": ["bye", "goodbye"], "responses": ["Goodbye! 🎬"]}
	]
}`

func TestClassifyMatchesSubstrings(t *testing.T) {
	c, err := intent.Parse([]byte(sampleIntents))
	require.NoError(t, err)

	tag, ok := c.Classify("Hello there")
	assert.True(t, ok)
	assert.Equal(t, "greeting", tag)

	tag, ok = c.Classify("THANK YOU so much")
	assert.True(t, ok)
	assert.Equal(t, "thanks", tag)

	_, ok = c.Classify("what is the weather")
	assert.False(t, ok)
}

// When several intents could match the same input, the first defined one
// wins. "hi" is a substring of "this is goodbye", but greeting is defined
// first.
func TestClassifyFirstDefinedWins(t *testing.T) {
	c, err := intent.Parse([]byte(sampleIntents))
	require.NoError(t, err)

	tag, ok := c.Classify("this is goodbye")
	assert.True(t, ok)
	assert.Equal(t, "greeting", tag)
}

func TestRespond(t *testing.T) {
	c, err := intent.Parse([]byte(sampleIntents))
	require.NoError(t, err)

	assert.Equal(t, "You're welcome! 😊", c.Respond("thanks a lot"))
	assert.Equal(t, intent.DefaultReply, c.Respond("random gibberish"))
}

// One classifier serves every session; concurrent fallbacks must not race
// on shared state.
func TestRespondConcurrent(t *testing.T) {
	c, err := intent.Parse([]byte(sampleIntents))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NotEmpty(t, c.Respond("hello there"))
			}
		}()
	}
	wg.Wait()
}

func TestParseRejectsBadArtifacts(t *testing.T) {
	cases := map[string]string{
		"invalid json": `{"intents": [`,
		"no intents":   `{"intents": []}`,
		"missing tag":  `{"intents": [{"patterns": ["x"], "responses": ["y"]}]}`,
		"no responses": `{"intents": [{"tag": "x", "patterns": ["x"], "responses": []}]}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := intent.Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := intent.Load("/nonexistent/intents.json")
	assert.Error(t, err)
}
