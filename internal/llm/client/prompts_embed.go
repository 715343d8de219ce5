package client

import (
	"embed"
	"strings"
)

// embeddedPrompts holds the built-in prompt templates so packaged executables
// can load them without needing access to the source tree.
//
//go:embed prompts/*.txt
var embeddedPrompts embed.FS

// loadPrompt returns the named template with its trailing newline removed.
func loadPrompt(name string) (string, error) {
	data, err := embeddedPrompts.ReadFile("prompts/" + name)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
