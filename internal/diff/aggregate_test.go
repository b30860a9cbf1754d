package diff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packageLockBlock = `diff --git a/package-lock.json b/package-lock.json
index 1111111..2222222 100644
--- a/package-lock.json
+++ b/package-lock.json
@@ -10,7 +10,7 @@
     "node_modules/lodash": {
-      "version": "4.17.20",
+      "version": "4.17.21",
       "resolved": "https://registry.npmjs.org/lodash/-/lodash-4.17.21.tgz",
`

func modifiedBlock(path string, adds, dels int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\nindex 1111111..2222222 100644\n--- a/%s\n+++ b/%s\n", path, path, path, path)
	fmt.Fprintf(&b, "@@ -1,%d +1,%d @@\n", dels, adds)
	for i := 0; i < dels; i++ {
		fmt.Fprintf(&b, "-old %s %d\n", path, i)
	}
	for i := 0; i < adds; i++ {
		fmt.Fprintf(&b, "+new %s %d\n", path, i)
	}
	return b.String()
}

func TestSplitBlocks(t *testing.T) {
	raw := "preamble\n" + modifiedBlock("a.txt", 1, 0) + modifiedBlock("b.txt", 0, 1)
	blocks := SplitBlocks(raw)
	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[0], "diff --git a/a.txt"))
	assert.True(t, strings.HasPrefix(blocks[1], "diff --git a/b.txt"))
	assert.Equal(t, "b.txt", BlockPath(blocks[1]))

	assert.Empty(t, SplitBlocks(""))
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("lockfile isolation", func(t *testing.T) {
		s, err := Summarize(ctx, packageLockBlock, Options{})
		require.NoError(t, err)
		assert.Empty(t, s.Files)
		assert.Equal(t, []string{"package-lock.json: 1 version entries updated (lodash)"}, s.LockfileSummaries)
		assert.Zero(t, s.TotalAdditions)
		assert.False(t, s.IsEmpty())
		assert.Contains(t, s.Text, "Files changed: 1 (lockfiles: 1)")
	})

	t.Run("totals and language weights", func(t *testing.T) {
		raw := addedLoginBlock + modifiedBlock("src/auth/session.ts", 3, 1) + modifiedBlock("README.md", 2, 0) + packageLockBlock
		s, err := Summarize(ctx, raw, Options{})
		require.NoError(t, err)
		require.Len(t, s.Files, 3)
		assert.Len(t, s.LockfileSummaries, 1)
		assert.Equal(t, 8, s.TotalAdditions)
		assert.Equal(t, 1, s.TotalDeletions)
		assert.Equal(t, 4, s.LanguageWeights[LangTS])
		assert.NotContains(t, s.LanguageWeights, LangNone)
		assert.Equal(t, 4, s.FileCount())
		assert.False(t, s.Truncated)
		assert.Equal(t, raw, s.RawDiff)
	})

	t.Run("empty diff", func(t *testing.T) {
		s, err := Summarize(ctx, "", Options{})
		require.NoError(t, err)
		assert.True(t, s.IsEmpty())
		assert.Equal(t, "Files changed: 0 (lockfiles: 0)\nTotal: +0/-0", s.Text)
	})

	t.Run("cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Summarize(cancelled, addedLoginBlock, Options{})
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("raw diff truncation", func(t *testing.T) {
		big := modifiedBlock("big.txt", 3000, 0)
		require.Greater(t, len(big), DefaultMaxRawChars)

		s, err := Summarize(ctx, big, Options{})
		require.NoError(t, err)
		assert.True(t, s.Truncated)
		assert.True(t, strings.HasSuffix(s.RawDiff, TruncationMarker))
		assert.Equal(t, DefaultMaxRawChars+len(TruncationMarker), len(s.RawDiff))
		assert.Equal(t, 3000, s.TotalAdditions)
	})
}

func TestTruncateRaw(t *testing.T) {
	t.Run("within limit unchanged", func(t *testing.T) {
		raw := strings.Repeat("a", 28000)
		got, truncated := TruncateRaw(raw, 28000)
		assert.False(t, truncated)
		assert.Equal(t, raw, got)
	})

	t.Run("over limit", func(t *testing.T) {
		raw := strings.Repeat("a", 28001)
		got, truncated := TruncateRaw(raw, 28000)
		assert.True(t, truncated)
		assert.Equal(t, strings.Repeat("a", 28000)+TruncationMarker, got)
	})

	t.Run("cuts on rune boundary", func(t *testing.T) {
		got, truncated := TruncateRaw("ab中文", 3)
		assert.True(t, truncated)
		assert.Equal(t, "ab中"+TruncationMarker, got)
	})

	t.Run("limit counts characters not bytes", func(t *testing.T) {
		raw := "diff --git a/doc.md b/doc.md\n+" + strings.Repeat("中", 10000)
		got, truncated := TruncateRaw(raw, DefaultMaxRawChars)
		assert.False(t, truncated)
		assert.Equal(t, raw, got)
	})

	t.Run("multibyte over limit", func(t *testing.T) {
		raw := strings.Repeat("中", DefaultMaxRawChars+5)
		got, truncated := TruncateRaw(raw, DefaultMaxRawChars)
		assert.True(t, truncated)
		assert.Equal(t, strings.Repeat("中", DefaultMaxRawChars)+TruncationMarker, got)
	})
}

func TestRenderSummary(t *testing.T) {
	s := &Summary{
		Files: []FileChange{
			{Path: "src/a.ts", ChangeType: ChangeAdded, Additions: 4, ContextLabels: []string{"run"}, Highlights: []string{"new file"}},
			{Path: "src/b.ts", ChangeType: ChangeModified, Additions: 1, Deletions: 2},
		},
		LockfileSummaries: []string{"yarn.lock: lockfile updated"},
		TotalAdditions:    5,
		TotalDeletions:    2,
	}

	t.Run("full listing", func(t *testing.T) {
		expected := strings.Join([]string{
			"Files changed: 3 (lockfiles: 1)",
			"Total: +5/-2",
			"- src/a.ts (added) [run] (+4/-0): new file",
			"- src/b.ts (+1/-2)",
			"- yarn.lock: lockfile updated",
		}, "\n")
		assert.Equal(t, expected, RenderSummary(s, 6))
	})

	t.Run("more files line", func(t *testing.T) {
		text := RenderSummary(s, 1)
		assert.NotContains(t, text, "src/b.ts")
		assert.True(t, strings.HasSuffix(text, "...and 1 more files"))
	})

	t.Run("pure function of fields", func(t *testing.T) {
		assert.Equal(t, RenderSummary(s, 6), RenderSummary(s, 6))
		assert.Empty(t, RenderSummary(nil, 6))
	})
}

func TestSummarizeLockfile(t *testing.T) {
	t.Run("package-lock", func(t *testing.T) {
		assert.Equal(t, "package-lock.json: 1 version entries updated (lodash)", SummarizeLockfile("package-lock.json", packageLockBlock))
	})

	t.Run("yarn with more than three packages", func(t *testing.T) {
		block := `diff --git a/yarn.lock b/yarn.lock
--- a/yarn.lock
+++ b/yarn.lock
@@ -1,16 +1,16 @@
-lodash@^4.17.20:
-  version "4.17.20"
+lodash@^4.17.21:
+  version "4.17.21"
-react@^18.2.0:
-  version "18.2.0"
+react@^18.3.0:
+  version "18.3.0"
-"@types/node@^20":
-  version "20.1.0"
+"@types/node@^20":
+  version "20.2.0"
-zod@^3.22.0:
-  version "3.22.0"
+zod@^3.23.0:
+  version "3.23.0"
`
		assert.Equal(t, "yarn.lock: 4 version entries updated (lodash, react, @types/node, ...)", SummarizeLockfile("yarn.lock", block))
	})

	t.Run("cargo", func(t *testing.T) {
		block := "@@ -1,4 +1,4 @@\n [[package]]\n name = \"serde\"\n-version = \"1.0.1\"\n+version = \"1.0.2\"\n"
		assert.Equal(t, "Cargo.lock: 1 version entries updated", SummarizeLockfile("Cargo.lock", block))
	})

	t.Run("go.sum", func(t *testing.T) {
		block := `@@ -1,2 +1,2 @@
-github.com/spf13/cobra v1.8.0 h1:abc=
-github.com/spf13/cobra v1.8.0/go.mod h1:def=
+github.com/spf13/cobra v1.8.1 h1:ghi=
+github.com/spf13/cobra v1.8.1/go.mod h1:jkl=
`
		assert.Equal(t, "go.sum: 2 version entries updated (github.com/spf13/cobra)", SummarizeLockfile("go.sum", block))
	})

	t.Run("no version fields", func(t *testing.T) {
		block := "@@ -1 +1 @@\n-    rails (7.0.0)\n+    rails (7.1.0)\n"
		assert.Equal(t, "Gemfile.lock: lockfile updated", SummarizeLockfile("Gemfile.lock", block))
	})
}

func TestIsLockfile(t *testing.T) {
	assert.True(t, IsLockfile("package-lock.json"))
	assert.True(t, IsLockfile("web/yarn.lock"))
	assert.True(t, IsLockfile("Cargo.lock"))
	assert.True(t, IsLockfile("go.sum"))
	assert.False(t, IsLockfile("package.json"))
	assert.False(t, IsLockfile("src/lock.go"))
}
