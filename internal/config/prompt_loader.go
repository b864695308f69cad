package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxPromptFileSize bounds custom prompt files
const maxPromptFileSize = 64 * 1024

// loadPromptsFromFiles replaces each operation's system prompt with the
// contents of its systemPromptFile, when one is set. Inline prompts are
// kept when no file is configured.
func (c *Config) loadPromptsFromFiles() error {
	ops := c.operations()
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		op := ops[name]
		if op.SystemPromptFile == "" {
			continue
		}
		content, err := loadPromptFromFile(op.SystemPromptFile)
		if err != nil {
			return fmt.Errorf("%s system prompt: %w", name, err)
		}
		op.SystemPrompt = content
		log.Printf("[CONFIG] Loaded %s system prompt from %s (%d bytes)", name, op.SystemPromptFile, len(content))
	}
	return nil
}

// loadPromptFromFile reads and validates one prompt file
func loadPromptFromFile(path string) (string, error) {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return "", fmt.Errorf("prompt file %s is not accessible: %w", clean, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("prompt file %s is a directory", clean)
	}
	if info.Size() > maxPromptFileSize {
		return "", fmt.Errorf("prompt file %s exceeds %d bytes", clean, maxPromptFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", clean, err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("prompt file %s is empty", clean)
	}
	return content, nil
}
