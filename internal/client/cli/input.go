package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetFloat prompts until the answer is empty or parses as a number. An empty
// answer yields def.
func GetFloat(reader *bufio.Reader, prompt string, def float64, w io.Writer) (float64, error) {
	for {
		s, err := GetSimpleText(reader, prompt, w)
		if err != nil {
			return 0, err
		}
		if s == "" {
			return def, nil
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err == nil {
			return v, nil
		}
		fmt.Fprintf(w, "%q is not a number\n", s)
	}
}

// splitOptions separates positional arguments from key=value options.
func splitOptions(args []string) ([]string, map[string]string) {
	var positional []string
	opts := map[string]string{}
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok && k != "" {
			opts[strings.ToLower(k)] = v
			continue
		}
		positional = append(positional, a)
	}
	return positional, opts
}

func optInt(opts map[string]string, key string) (*int, error) {
	s, ok := opts[key]
	if !ok {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not an integer", key, s)
	}
	return &v, nil
}

func optFloat(opts map[string]string, key string) (*float64, error) {
	s, ok := opts[key]
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", key, s)
	}
	return &v, nil
}

func optString(opts map[string]string, key string) *string {
	s, ok := opts[key]
	if !ok || s == "" {
		return nil
	}
	return &s
}
