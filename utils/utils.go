package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment utilities
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// AnswerLetterToIndex maps an answer letter A-D to its option index.
// Returns -1 for anything it doesn't recognize.
func AnswerLetterToIndex(letter string) int {
	switch strings.ToUpper(strings.TrimSpace(letter)) {
	case "A":
		return 0
	case "B":
		return 1
	case "C":
		return 2
	case "D":
		return 3
	}
	return -1
}

// FormatTimer renders a remaining duration as MM:SS for countdown display.
// Negative durations are clamped to 00:00.
func FormatTimer(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
