//go:build integration

package engine_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hammy-pdi-dev/update-repos/internal/engine"
	"github.com/hammy-pdi-dev/update-repos/internal/gitx"
	"github.com/hammy-pdi-dev/update-repos/internal/model"
)

func writeWorkFile(dir, name, contents string) {
	Expect(os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644)).To(Succeed())
}

func git(dir string, args ...string) string {
	full := append([]string{"-C", dir,
		"-c", "user.email=dev@example.com",
		"-c", "user.name=dev",
		"-c", "init.defaultBranch=main",
	}, args...)
	out, err := exec.Command("git", full...).CombinedOutput()
	Expect(err).NotTo(HaveOccurred(), "git %v: %s", args, string(out))
	return string(out)
}

// setupUpstream creates a bare origin with one commit and clones it into
// root/name.
func setupUpstream(base, root, name string) (upstream, clone string) {
	upstream = filepath.Join(base, name+"-origin.git")
	seed := filepath.Join(base, name+"-seed")
	git(base, "init", "--bare", upstream)
	git(base, "init", seed)
	git(seed, "commit", "--allow-empty", "-m", "init")
	git(seed, "remote", "add", "origin", upstream)
	git(seed, "push", "origin", "main")

	clone = filepath.Join(root, name)
	git(base, "clone", upstream, clone)
	return upstream, clone
}

// advanceUpstream adds a commit to the bare origin through a throwaway
// checkout.
func advanceUpstream(base, upstream, tag string) {
	work := filepath.Join(base, "advance-"+tag)
	git(base, "clone", upstream, work)
	git(work, "commit", "--allow-empty", "-m", "advance "+tag)
	git(work, "push", "origin", "main")
}

var _ = Describe("Engine against real git", func() {
	It("fast-forwards a clean clone that is behind", func() {
		base := GinkgoT().TempDir()
		root := filepath.Join(base, "root")
		makeRepoDirs(base, "root")
		upstream, _ := setupUpstream(base, root, "Hx")
		advanceUpstream(base, upstream, "one")

		coord := &engine.Coordinator{Gateway: &gitx.Gateway{}}
		report, err := coord.Run(context.Background(), model.RunOptions{
			Root:       root,
			NamePrefix: "H",
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Outcomes).To(HaveLen(1))

		out := report.Outcomes[0]
		Expect(out.Status.Kind).To(Equal(model.StatusFastForwarded))
		Expect(out.Pulled).To(Equal(model.PulledYes))
		Expect(out.Behind).To(BeZero())
	})

	It("reports an unchanged clone as already up to date, twice", func() {
		base := GinkgoT().TempDir()
		root := filepath.Join(base, "root")
		makeRepoDirs(base, "root")
		setupUpstream(base, root, "Hx")

		coord := &engine.Coordinator{Gateway: &gitx.Gateway{}}
		for i := 0; i < 2; i++ {
			report, err := coord.Run(context.Background(), model.RunOptions{
				Root:       root,
				NamePrefix: "H",
			}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Outcomes[0].Status.Kind).To(Equal(model.StatusUpToDate))
			Expect(report.Outcomes[0].Pulled).To(Equal(model.PulledNo))
		}
	})

	It("stashes a dirty tree around the pull and restores it", func() {
		base := GinkgoT().TempDir()
		root := filepath.Join(base, "root")
		makeRepoDirs(base, "root")
		upstream, clone := setupUpstream(base, root, "Hy")
		advanceUpstream(base, upstream, "one")
		writeWorkFile(clone, "hack.txt", "uncommitted")

		coord := &engine.Coordinator{Gateway: &gitx.Gateway{}}
		report, err := coord.Run(context.Background(), model.RunOptions{
			Root:       root,
			NamePrefix: "H",
			StashDirty: true,
		}, nil)
		Expect(err).NotTo(HaveOccurred())

		out := report.Outcomes[0]
		Expect(out.Status.Kind).To(Equal(model.StatusFastForwarded))
		Expect(out.Status.Stash).To(Equal(model.StashRestored))
		Expect(out.DirtyAtStart).To(BeTrue())
		// The uncommitted file survives the sync.
		Expect(git(clone, "status", "--porcelain=v1")).To(ContainSubstring("hack.txt"))
	})

	It("skips a dirty tree entirely when asked", func() {
		base := GinkgoT().TempDir()
		root := filepath.Join(base, "root")
		makeRepoDirs(base, "root")
		_, clone := setupUpstream(base, root, "Hz")
		writeWorkFile(clone, "hack.txt", "uncommitted")

		coord := &engine.Coordinator{Gateway: &gitx.Gateway{}}
		report, err := coord.Run(context.Background(), model.RunOptions{
			Root:       root,
			NamePrefix: "H",
			SkipDirty:  true,
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Outcomes[0].Status.Kind).To(Equal(model.StatusDirtySkipped))
		Expect(report.Outcomes[0].Pulled).To(Equal(model.PulledSkipped))
	})

	It("fetches without pulling on a detached head", func() {
		base := GinkgoT().TempDir()
		root := filepath.Join(base, "root")
		makeRepoDirs(base, "root")
		upstream, clone := setupUpstream(base, root, "Hd")
		advanceUpstream(base, upstream, "one")
		git(clone, "checkout", "--detach", "HEAD")

		coord := &engine.Coordinator{Gateway: &gitx.Gateway{}}
		report, err := coord.Run(context.Background(), model.RunOptions{
			Root:       root,
			NamePrefix: "H",
		}, nil)
		Expect(err).NotTo(HaveOccurred())

		out := report.Outcomes[0]
		Expect(out.Status.Kind).To(Equal(model.StatusDetachedHead))
		Expect(out.Branch).To(HavePrefix("(detached at "))
		Expect(out.Ahead).To(BeZero())
		Expect(out.Behind).To(BeZero())
	})
})
