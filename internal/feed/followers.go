package feed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoFollowers is returned when the configuration yields no accounts.
// The run must abort before any network activity in that case.
var ErrNoFollowers = errors.New("no followers configured")

// LoadFollowers reads the follower list from a plain-text file.
func LoadFollowers(path string) ([]Follower, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open followers file: %w", err)
	}
	defer f.Close()

	followers, err := ParseFollowers(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return followers, nil
}

// ParseFollowers parses the follower list format: one entry per line,
// either "username" or "username,group". Lines starting with '#' are
// section comments and blank lines are ignored. Duplicate usernames are
// dropped case-insensitively, first occurrence wins.
func ParseFollowers(r io.Reader) ([]Follower, error) {
	var followers []Follower
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		username := strings.TrimSpace(parts[0])
		if username == "" {
			continue
		}
		key := strings.ToLower(username)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		follower := Follower{Username: username}
		if len(parts) > 1 {
			follower.Group = strings.TrimSpace(parts[1])
		}
		followers = append(followers, follower)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read followers: %w", err)
	}

	if len(followers) == 0 {
		return nil, ErrNoFollowers
	}
	return followers, nil
}
