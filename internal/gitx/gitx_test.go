package gitx_test

import (
	"context"
	"errors"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hammy-pdi-dev/update-repos/internal/gitx"
)

var _ = Describe("GitRunner.Run", func() {
	var runner *gitx.GitRunner

	BeforeEach(func() {
		runner = &gitx.GitRunner{}
	})

	It("runs git version successfully", func() {
		out, err := runner.Run(context.Background(), "", "version")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("git version"))
	})

	It("errors for nonexistent directory", func() {
		_, err := runner.Run(context.Background(), "/nonexistent/path/xyz", "status")
		Expect(err).To(HaveOccurred())
	})

	It("respects context cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := runner.Run(ctx, "", "version")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("IsRepo", func() {
	It("returns true for a valid repo", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --is-inside-work-tree": {Output: "true"},
		}}
		ok, err := gitx.IsRepo(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("returns false on error", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --is-inside-work-tree": {Err: errors.New("not a repo")},
		}}
		ok, err := gitx.IsRepo(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("returns false when output is not 'true'", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --is-inside-work-tree": {Output: "false"},
		}}
		ok, err := gitx.IsRepo(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Head", func() {
	It("returns branch name for attached HEAD", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short HEAD": {Output: "main"},
		}}
		h, err := gitx.Head(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(h.Branch).To(Equal("main"))
		Expect(h.Detached).To(BeFalse())
	})

	It("returns short revision for detached HEAD", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short HEAD": {Err: errors.New("not symbolic")},
			"/repo:rev-parse --short HEAD":            {Output: "abc1234"},
		}}
		h, err := gitx.Head(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(h.Detached).To(BeTrue())
		Expect(h.ShortRev).To(Equal("abc1234"))
		Expect(h.Label()).To(Equal("(detached at abc1234)"))
	})

	It("returns bare detached head when no commit resolves", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short HEAD": {Err: errors.New("not symbolic")},
			"/repo:rev-parse --short HEAD":            {Err: errors.New("no HEAD")},
		}}
		h, err := gitx.Head(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(h.Detached).To(BeTrue())
		Expect(h.Label()).To(Equal("(detached)"))
	})
})

var _ = Describe("WorktreeStatus", func() {
	It("returns parsed worktree status", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:status --porcelain=v1": {Output: "M  file.go\n?? new.go\n"},
		}}
		wt, err := gitx.WorktreeStatus(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(wt.Staged).To(Equal(1))
		Expect(wt.Untracked).To(Equal(1))
		Expect(wt.Dirty).To(BeTrue())
	})

	It("returns clean for empty status", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:status --porcelain=v1": {Output: ""},
		}}
		wt, err := gitx.WorktreeStatus(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(wt.Dirty).To(BeFalse())
	})

	It("propagates command errors", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:status --porcelain=v1": {Err: errors.New("boom")},
		}}
		_, err := gitx.WorktreeStatus(context.Background(), mock, "/repo")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("HasRemote", func() {
	It("finds a configured remote", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:remote": {Output: "origin\nupstream"},
		}}
		ok, err := gitx.HasRemote(context.Background(), mock, "/repo", "origin")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("returns false when the remote is absent", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:remote": {Output: "upstream"},
		}}
		ok, err := gitx.HasRemote(context.Background(), mock, "/repo", "origin")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("returns false for no remotes at all", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:remote": {Output: ""},
		}}
		ok, err := gitx.HasRemote(context.Background(), mock, "/repo", "origin")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("HasRemoteBranch", func() {
	It("returns true when the ref verifies", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --verify --quiet refs/remotes/origin/main": {Output: "abc123"},
		}}
		Expect(gitx.HasRemoteBranch(context.Background(), mock, "/repo", "origin", "main")).To(BeTrue())
	})

	It("returns false when the ref is missing", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --verify --quiet refs/remotes/origin/gone": {Err: errors.New("exit 1")},
		}}
		Expect(gitx.HasRemoteBranch(context.Background(), mock, "/repo", "origin", "gone")).To(BeFalse())
	})
})

var _ = Describe("AheadBehind", func() {
	It("parses the left-right counts", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-list --left-right --count main...origin/main": {Output: "2\t5"},
		}}
		ahead, behind, err := gitx.AheadBehind(context.Background(), mock, "/repo", "main", "origin/main")
		Expect(err).NotTo(HaveOccurred())
		Expect(ahead).To(Equal(2))
		Expect(behind).To(Equal(5))
	})

	It("errors on malformed output", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-list --left-right --count main...origin/main": {Output: "garbage"},
		}}
		_, _, err := gitx.AheadBehind(context.Background(), mock, "/repo", "main", "origin/main")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("GitRunner with real git", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "gitx-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tmpDir)).To(Succeed())
	})

	It("detects a real git repo", func() {
		runner := &gitx.GitRunner{}
		ctx := context.Background()

		_, err := runner.Run(ctx, tmpDir, "init")
		Expect(err).NotTo(HaveOccurred())

		ok, err := gitx.IsRepo(ctx, runner, tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("reports a plain directory as not a repo", func() {
		runner := &gitx.GitRunner{}
		ok, err := gitx.IsRepo(context.Background(), runner, tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})
