package session

import "fmt"

// The pretend pipeline narrated while a search runs.

func startLine(m Mode) string {
	return fmt.Sprintf("Starting engine in mode: %s...", m)
}

func stageLines(m Mode) []string {
	if m == ModeCrypto {
		return []string{
			"Connecting to crypto satellite (isolated)...",
			"Reading Whale Alert & RSS feeds...",
			"Core: detecting price manipulation...",
		}
	}
	return []string{
		"Connecting to global NewsAPI...",
		"Core: vectorizing macro narratives...",
	}
}

const finalLine = "Finalizing analysis..."
