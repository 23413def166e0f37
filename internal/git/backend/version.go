package backend

import (
	"cmp"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// minGitVersion is the oldest git the CLI backend accepts; "git restore
// --staged" arrived in 2.23.
var minGitVersion = gitVersion{major: 2, minor: 23}

type gitVersion struct {
	major int
	minor int
	patch int
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) compare(other gitVersion) int {
	if c := cmp.Compare(v.major, other.major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.minor, other.minor); c != 0 {
		return c
	}
	return cmp.Compare(v.patch, other.patch)
}

// parseGitVersionOutput reads the output of "git --version", tolerating
// vendor suffixes such as "2.39.3 (Apple Git-146)" or "2.39.3.windows.1".
func parseGitVersionOutput(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	if _, rest, ok := strings.Cut(s, "git version"); ok {
		s = strings.TrimSpace(rest)
	}
	s = strings.TrimLeftFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end := strings.IndexFunc(s, func(r rune) bool { return r != '.' && (r < '0' || r > '9') }); end >= 0 {
		s = s[:end]
	}
	parts := strings.Split(strings.Trim(s, "."), ".")
	if len(parts) < 2 {
		return gitVersion{}, false
	}
	var nums [3]int
	for i := 0; i < len(parts) && i < len(nums); i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			if i < 2 {
				return gitVersion{}, false
			}
			break
		}
		nums[i] = n
	}
	return gitVersion{major: nums[0], minor: nums[1], patch: nums[2]}, true
}

func validateGitVersionOutput(out string) error {
	got, ok := parseGitVersionOutput(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if got.compare(minGitVersion) < 0 {
		return fmt.Errorf("git %s is too old; gitpulse requires git >= %s", got, minGitVersion)
	}
	return nil
}

// ensureMinGitVersion runs "git --version" once per process.
var ensureMinGitVersion = sync.OnceValue(func() error {
	out, err := exec.Command("git", "--version").CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		if text != "" {
			return fmt.Errorf("git --version: %w: %s", err, text)
		}
		return fmt.Errorf("git --version: %w", err)
	}
	return validateGitVersionOutput(text)
})
