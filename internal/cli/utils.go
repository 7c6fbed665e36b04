package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// promptWithRetry prompts the user for input and retries on invalid input
func promptWithRetry(reader *bufio.Reader, out io.Writer, prompt string, validator func(string) (string, error)) (string, error) {
	for {
		fmt.Fprint(out, prompt)
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)

		result, err := validator(input)
		if err == nil {
			return result, nil
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return "", fmt.Errorf("input closed: %w", err)
			}
			return "", readErr
		}

		fmt.Fprintf(out, "❌ %s\n\n", err.Error())
	}
}

// promptYesNo prompts for yes/no input with retry
func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	result, err := promptWithRetry(reader, out, prompt, func(input string) (string, error) {
		lower := strings.ToLower(input)
		if lower == "y" || lower == "yes" || lower == "n" || lower == "no" || lower == "" {
			return lower, nil
		}
		return "", fmt.Errorf("invalid input: %s (enter y/yes/n/no or press Enter for no)", input)
	})
	if err != nil {
		return false, err
	}

	return result == "y" || result == "yes", nil
}

// promptOptional prompts for optional input with default value
func promptOptional(reader *bufio.Reader, out io.Writer, prompt string, defaultValue string) (string, error) {
	return promptWithRetry(reader, out, prompt, func(input string) (string, error) {
		if input == "" {
			return defaultValue, nil
		}
		return input, nil
	})
}

// promptValidated prompts for input with a default value and a validator
func promptValidated(reader *bufio.Reader, out io.Writer, prompt string, defaultValue string, validator func(string) (string, error)) (string, error) {
	return promptWithRetry(reader, out, prompt, func(input string) (string, error) {
		if input == "" {
			input = defaultValue
		}
		return validator(input)
	})
}
