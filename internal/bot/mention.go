package bot

import (
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseRequest extracts the prompt from a message addressed to the bot.
//
// Two forms are accepted: the "/command prompt" slash command (optionally "/command@username")
// and a leading mention "@username command prompt". matched reports whether the message was
// meant for the bot at all; prompt may still be empty.
func ParseRequest(msg *tgbotapi.Message, command, username string) (prompt string, matched bool) {
	if msg == nil {
		return "", false
	}

	if msg.IsCommand() {
		if !strings.EqualFold(msg.Command(), command) {
			return "", false
		}
		if _, at, ok := strings.Cut(msg.CommandWithAt(), "@"); ok && !strings.EqualFold(at, username) {
			return "", false
		}
		return strings.TrimSpace(msg.CommandArguments()), true
	}

	return parseMention(msg.Text, command, username)
}

func parseMention(text, command, username string) (string, bool) {
	if username == "" {
		return "", false
	}

	rest, ok := cutWord(strings.TrimSpace(text), "@"+username)
	if !ok {
		return "", false
	}

	rest, ok = cutWord(strings.TrimLeftFunc(rest, unicode.IsSpace), command)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// cutWord removes a case-insensitive leading word from s.
// The word must be followed by whitespace or the end of s.
func cutWord(s, word string) (string, bool) {
	if len(s) < len(word) || !strings.EqualFold(s[:len(word)], word) {
		return "", false
	}
	rest := s[len(word):]
	if rest != "" && !unicode.IsSpace([]rune(rest)[0]) {
		return "", false
	}
	return rest, true
}
