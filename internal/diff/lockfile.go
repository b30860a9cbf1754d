package diff

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var lockfileNames = map[string]bool{
	"package-lock.json":   true,
	"npm-shrinkwrap.json": true,
	"yarn.lock":           true,
	"pnpm-lock.yaml":      true,
	"bun.lockb":           true,
	"cargo.lock":          true,
	"poetry.lock":         true,
	"pipfile.lock":        true,
	"gemfile.lock":        true,
	"composer.lock":       true,
	"go.sum":              true,
}

var (
	lockVersionRe = regexp.MustCompile(`^([+-])\s*"?version"?\s*(?::|=|\s+")`)
	goSumRe       = regexp.MustCompile(`^([+-])(\S+)\s+v[^\s/]+(?:/go\.mod)?\s+h1:`)

	// tried in order per line; the first match names the package
	lockPackageRes = []*regexp.Regexp{
		regexp.MustCompile(`"node_modules/((?:@[\w.-]+/)?[\w.-]+)"`),
		regexp.MustCompile(`^[+-]"?((?:@[\w.-]+/)?[\w.-]+)@`),
		regexp.MustCompile(`^[+-]\s*name\s*=\s*"([^"]+)"`),
		regexp.MustCompile(`/((?:@[\w.-]+/)?[\w.-]+)@`),
	}
)

const maxLockfilePackages = 3

// IsLockfile reports whether the path's basename is a known dependency lockfile.
func IsLockfile(path string) bool {
	return lockfileNames[strings.ToLower(filepath.Base(path))]
}

// SummarizeLockfile compresses a lockfile diff block into one line.
func SummarizeLockfile(path, block string) string {
	base := filepath.Base(path)
	adds, removes := 0, 0
	var packages uniqueList

	inHunk := false
	for _, line := range strings.Split(block, "\n") {
		if strings.HasPrefix(line, "@@") {
			inHunk = true
			continue
		}
		if !inHunk {
			continue
		}
		if m := goSumRe.FindStringSubmatch(line); m != nil {
			countSign(m[1], &adds, &removes)
			packages.add(m[2])
			continue
		}
		if m := lockVersionRe.FindStringSubmatch(line); m != nil {
			countSign(m[1], &adds, &removes)
			continue
		}
		for _, re := range lockPackageRes {
			if m := re.FindStringSubmatch(line); m != nil {
				packages.add(m[1])
				break
			}
		}
	}

	if adds == 0 && removes == 0 {
		return base + ": lockfile updated"
	}

	n := max(adds, removes, len(packages.items))
	if len(packages.items) == 0 {
		return fmt.Sprintf("%s: %d version entries updated", base, n)
	}
	shown := packages.items
	if len(shown) > maxLockfilePackages {
		shown = shown[:maxLockfilePackages]
	}
	list := strings.Join(shown, ", ")
	if len(packages.items) > maxLockfilePackages {
		list += ", ..."
	}
	return fmt.Sprintf("%s: %d version entries updated (%s)", base, n, list)
}

func countSign(sign string, adds, removes *int) {
	if sign == "+" {
		*adds++
	} else {
		*removes++
	}
}
