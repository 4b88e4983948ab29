package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFollowers(t *testing.T) {
	input := `# tech accounts
alice,tech
bob

# news
carol,news
dave
`
	followers, err := ParseFollowers(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []Follower{
		{Username: "alice", Group: "tech"},
		{Username: "bob"},
		{Username: "carol", Group: "news"},
		{Username: "dave"},
	}, followers)
}

func TestParseFollowersDeduplicatesCaseInsensitively(t *testing.T) {
	input := "alice,tech\nAlice,news\nALICE\nbob\n"

	followers, err := ParseFollowers(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []Follower{
		{Username: "alice", Group: "tech"},
		{Username: "bob"},
	}, followers, "first occurrence wins")
}

func TestParseFollowersTrimsWhitespace(t *testing.T) {
	input := "  alice , tech \n\tbob\n"

	followers, err := ParseFollowers(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []Follower{
		{Username: "alice", Group: "tech"},
		{Username: "bob"},
	}, followers)
}

func TestParseFollowersEmpty(t *testing.T) {
	for _, input := range []string{"", "# only comments\n\n", ",orphan-group\n"} {
		_, err := ParseFollowers(strings.NewReader(input))
		require.ErrorIs(t, err, ErrNoFollowers, "input %q", input)
	}
}

func TestLoadFollowers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "followers.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice,tech\n"), 0o600))

	followers, err := LoadFollowers(path)
	require.NoError(t, err)
	require.Equal(t, []Follower{{Username: "alice", Group: "tech"}}, followers)
}

func TestLoadFollowersMissingFile(t *testing.T) {
	_, err := LoadFollowers(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}
