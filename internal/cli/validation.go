package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// validateChoice returns a validator accepting one of choices (case-insensitive)
func validateChoice(choices ...string) func(string) (string, error) {
	return func(input string) (string, error) {
		input = strings.ToLower(strings.TrimSpace(input))
		for _, c := range choices {
			if input == c {
				return input, nil
			}
		}
		return "", fmt.Errorf("invalid choice: %s (must be one of %s)", input, strings.Join(choices, ", "))
	}
}

// validatePort validates TCP port input
func validatePort(input string) (string, error) {
	input = strings.TrimSpace(input)
	port, err := strconv.Atoi(input)
	if err != nil {
		return "", fmt.Errorf("invalid port: %s (must be a number)", input)
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid port: %d (must be between 1 and 65535)", port)
	}
	return input, nil
}

// validateIndex validates a non-negative integer such as a Redis DB index
func validateIndex(input string) (string, error) {
	input = strings.TrimSpace(input)
	n, err := strconv.Atoi(input)
	if err != nil || n < 0 {
		return "", fmt.Errorf("invalid index: %s (must be 0 or greater)", input)
	}
	return input, nil
}

// validateDuration validates a Go duration such as 5s or 500ms
func validateDuration(input string) (string, error) {
	input = strings.TrimSpace(input)
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return "", fmt.Errorf("invalid duration: %s (e.g. 5s, 500ms)", input)
	}
	return input, nil
}

// validateRequired rejects empty input
func validateRequired(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("this field is required")
	}
	return input, nil
}
