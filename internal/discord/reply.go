package discord

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/detache/pkg/retrylimit"
)

// maxMessageLength is Discord's cap on message content, in characters.
const maxMessageLength = 2000

// classifyREST sorts discordgo errors by HTTP status. Network errors
// without a response are retried.
func classifyREST(err error) retrylimit.Class {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return retrylimit.ClassForStatus(rest.Response.StatusCode)
	}
	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) {
		return retrylimit.Throttle
	}
	return retrylimit.ClassifyStatus(err)
}

// splitMessage cuts text into chunks of at most limit characters, preferring
// to break after a newline.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		cut := limit
		if i := strings.LastIndex(string(runes[:limit]), "\n"); i > 0 {
			cut = len([]rune(string(runes[:limit])[:i+1]))
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
