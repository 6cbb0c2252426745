// Package intent answers free text that the dialogue has no structured
// expectation for. Intents come from a trained artifact (intents.json)
// loaded once at startup and immutable afterwards.
package intent

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// DefaultReply is returned when no intent matches.
const DefaultReply = "Sorry, I didn't understand that. Can you please rephrase?"

type Intent struct {
	Tag       string   `json:"tag"`
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses"`
}

type intentsFile struct {
	Intents []Intent `json:"intents"`
}

// Classifier matches free text against intent patterns. Matching is
// case-insensitive substring containment in definition order: the first
// defined intent with a matching pattern wins, which preserves reply
// parity with the trained reference set. One Classifier serves all
// sessions concurrently.
type Classifier struct {
	intents []Intent
}

func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load intents: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Classifier, error) {
	var file intentsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse intents: %w", err)
	}
	if len(file.Intents) == 0 {
		return nil, fmt.Errorf("parse intents: no intents defined")
	}
	for i, it := range file.Intents {
		if it.Tag == "" {
			return nil, fmt.Errorf("parse intents: intent %d has no tag", i)
		}
		if len(it.Responses) == 0 {
			return nil, fmt.Errorf("parse intents: intent %q has no responses", it.Tag)
		}
	}
	return &Classifier{intents: file.Intents}, nil
}

// Classify returns the tag of the first matching intent.
func (c *Classifier) Classify(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, it := range c.intents {
		for _, pattern := range it.Patterns {
			if pattern == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(pattern)) {
				return it.Tag, true
			}
		}
	}
	return "", false
}

// Respond returns a canned reply for the best-matching intent, or the
// fixed apology when nothing matches.
func (c *Classifier) Respond(text string) string {
	tag, ok := c.Classify(text)
	if !ok {
		return DefaultReply
	}
	for _, it := range c.intents {
		if it.Tag == tag {
			return it.Responses[rand.Intn(len(it.Responses))]
		}
	}
	return DefaultReply
}
