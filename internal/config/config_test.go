package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hammy-pdi-dev/update-repos/internal/config"
)

var _ = Describe("Config", func() {
	It("resolves config path from override directory", func() {
		path, err := config.ConfigPath(filepath.Join("tmp", "update-repos"))
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(HaveSuffix(filepath.Join("update-repos", "config.yaml")))
	})

	It("resolves config path from override file", func() {
		path, err := config.ConfigPath(filepath.Join("tmp", "config.yaml"))
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join("tmp", "config.yaml")))
	})

	It("treats a local dotfile override as a file path", func() {
		override := filepath.Join("tmp", config.LocalConfigFilename)
		path, err := config.ConfigPath(override)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(override))
	})

	It("resolves config path from env", func() {
		Expect(os.Setenv(config.EnvConfigPath, filepath.Join("cfg", "config.yaml"))).To(Succeed())
		defer func() { _ = os.Unsetenv(config.EnvConfigPath) }()
		path, err := config.ConfigPath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join("cfg", "config.yaml")))
	})

	It("resolves init path to local dotfile by default", func() {
		dir := GinkgoT().TempDir()
		path, err := config.InitConfigPath("", dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, config.LocalConfigFilename)))
	})

	It("prefers local dotfile for runtime config resolution", func() {
		dir := GinkgoT().TempDir()
		localPath := filepath.Join(dir, config.LocalConfigFilename)
		Expect(os.WriteFile(localPath, []byte("name_prefix: H\n"), 0o644)).To(Succeed())

		path, err := config.ResolveConfigPath("", dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(localPath))
	})

	It("resolves runtime config from nearest parent dotfile", func() {
		dir := GinkgoT().TempDir()
		parentPath := filepath.Join(dir, config.LocalConfigFilename)
		Expect(os.WriteFile(parentPath, []byte("name_prefix: parent\n"), 0o644)).To(Succeed())

		nested := filepath.Join(dir, "a", "b", "c")
		Expect(os.MkdirAll(nested, 0o755)).To(Succeed())

		path, err := config.ResolveConfigPath("", nested)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(parentPath))
	})

	It("prefers nearer dotfile over farther parent", func() {
		dir := GinkgoT().TempDir()
		parentPath := filepath.Join(dir, config.LocalConfigFilename)
		Expect(os.WriteFile(parentPath, []byte("name_prefix: parent\n"), 0o644)).To(Succeed())

		childDir := filepath.Join(dir, "a", "b")
		Expect(os.MkdirAll(childDir, 0o755)).To(Succeed())
		childPath := filepath.Join(childDir, config.LocalConfigFilename)
		Expect(os.WriteFile(childPath, []byte("name_prefix: child\n"), 0o644)).To(Succeed())

		nested := filepath.Join(childDir, "c")
		Expect(os.MkdirAll(nested, 0o755)).To(Succeed())

		path, err := config.ResolveConfigPath("", nested)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(childPath))
	})

	It("falls back to global runtime config when local dotfile is absent", func() {
		dir := GinkgoT().TempDir()
		path, err := config.ResolveConfigPath("", dir)
		Expect(err).NotTo(HaveOccurred())

		globalPath, err := config.ConfigPath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(globalPath))
	})

	It("saves and loads config with defaults", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "config.yaml")
		cfg := config.DefaultConfig()
		cfg.Root = filepath.Join(dir, "repos")
		cfg.NamePrefix = "H"
		cfg.Exclude = []string{"*-archive"}

		Expect(config.Save(&cfg, path)).To(Succeed())
		loaded, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Root).To(Equal(filepath.Join(dir, "repos")))
		Expect(loaded.NamePrefix).To(Equal("H"))
		Expect(loaded.Exclude).To(Equal([]string{"*-archive"}))
		Expect(loaded.Defaults.RemoteName).To(Equal("origin"))
		Expect(loaded.Defaults.Jobs).To(Equal(1))
		Expect(loaded.Defaults.TimeoutSeconds).To(Equal(60))
	})

	It("backfills defaults on load when fields are missing", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "config.yaml")
		Expect(os.WriteFile(path, []byte("name_prefix: H\ndefaults:\n  jobs: -2\n"), 0o644)).To(Succeed())

		loaded, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Defaults.RemoteName).To(Equal("origin"))
		Expect(loaded.Defaults.Jobs).To(Equal(1))
		Expect(loaded.Defaults.TimeoutSeconds).To(Equal(60))
		Expect(loaded.Defaults.FetchRetries).To(Equal(0))
	})

	It("rejects configs asking to both skip and stash dirty worktrees", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "config.yaml")
		doc := "sync:\n  skip_dirty: true\n  stash_dirty: true\n"
		Expect(os.WriteFile(path, []byte(doc), 0o644)).To(Succeed())

		_, err := config.Load(path)
		Expect(err).To(MatchError(ContainSubstring("mutually exclusive")))
	})

	It("resolves a relative configured root against the config file", func() {
		cfg := config.DefaultConfig()
		cfg.Root = filepath.Join("..", "repos")
		got := config.EffectiveRoot(filepath.Join("home", "dev", config.LocalConfigFilename), &cfg)
		Expect(got).To(Equal(filepath.Join("home", "repos")))
	})

	It("keeps an absolute configured root unchanged", func() {
		dir := GinkgoT().TempDir()
		cfg := config.DefaultConfig()
		cfg.Root = dir
		Expect(config.EffectiveRoot(filepath.Join("elsewhere", "config.yaml"), &cfg)).To(Equal(dir))
	})

	It("returns empty effective root for nil or blank config", func() {
		Expect(config.EffectiveRoot("x/config.yaml", nil)).To(BeEmpty())
		cfg := config.DefaultConfig()
		Expect(config.EffectiveRoot("x/config.yaml", &cfg)).To(BeEmpty())
	})
})
