package initcmder_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/sedstart-action/cmd/sedstart/init"
	"github.com/papercomputeco/sedstart-action/pkg/config"
)

var _ = Describe("NewInitCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Use).To(Equal("init"))
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Args(cmd, []string{})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"extra"})).NotTo(Succeed())
	})

	It("has a --preset flag", func() {
		cmd := initcmder.NewInitCmd()
		f := cmd.Flags().Lookup("preset")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("Init command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "sedstart-init-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	execute := func(args ...string) error {
		cmd := initcmder.NewInitCmd()
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	It("creates a .sedstart directory with a default config.toml", func() {
		Expect(execute()).To(Succeed())

		Expect(filepath.Join(tmpDir, ".sedstart")).To(BeADirectory())

		cfg := loadConfig(tmpDir)
		Expect(cfg.Version).To(Equal(config.CurrentV))
		Expect(cfg.API.Environment).To(Equal("prod"))
		Expect(cfg.API.AuthScheme).To(Equal("x-api-key"))

		data, err := os.ReadFile(filepath.Join(tmpDir, ".sedstart", "config.toml"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).NotTo(ContainSubstring("project_id = 0"))
		Expect(string(data)).NotTo(ContainSubstring("suite_id"))
	})

	It("does not overwrite an existing config.toml", func() {
		dir := filepath.Join(tmpDir, ".sedstart")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[run]\nbrowser = \"edge\"\n"), 0o600)).To(Succeed())

		Expect(execute()).To(Succeed())

		cfg := loadConfig(tmpDir)
		Expect(cfg.Run.Browser).To(Equal("edge"))
	})

	It("overwrites config.toml with a preset", func() {
		Expect(execute()).To(Succeed())
		Expect(execute("--preset", "qa")).To(Succeed())

		cfg := loadConfig(tmpDir)
		Expect(cfg.API.Environment).To(Equal("qa"))

		Expect(execute("--preset", "prod")).To(Succeed())
		Expect(loadConfig(tmpDir).API.Environment).To(Equal("prod"))
	})

	It("rejects unknown preset names", func() {
		err := execute("--preset", "staging")
		Expect(err).To(MatchError(ContainSubstring("unknown preset")))
	})

	Describe("--preset with remote URL", func() {
		It("fetches and writes remote config.toml", func() {
			remoteCfg := `version = 0

[api]
base_url = "https://sedstart.internal.example"

[run]
project_id = 12
profile_id = 3
browser = "firefox"
`
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				fmt.Fprint(w, remoteCfg)
			}))
			defer server.Close()

			Expect(execute("--preset", server.URL)).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.API.BaseURL).To(Equal("https://sedstart.internal.example"))
			Expect(cfg.Run.ProjectID).To(Equal(int64(12)))
			Expect(cfg.Run.ProfileID).To(Equal(int64(3)))
			Expect(cfg.Run.Browser).To(Equal("firefox"))
		})

		It("returns error for non-200 HTTP response", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			err := execute("--preset", server.URL)
			Expect(err).To(MatchError(ContainSubstring("HTTP 404")))
		})

		It("returns error for invalid TOML from URL", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "this is not valid toml [[[")
			}))
			defer server.Close()

			err := execute("--preset", server.URL)
			Expect(err).To(MatchError(ContainSubstring("parsing")))
		})

		It("returns error for unreachable URL", func() {
			err := execute("--preset", "http://127.0.0.1:1")
			Expect(err).To(MatchError(ContainSubstring("fetching remote config")))
		})
	})
})

// loadConfig is a test helper that reads and parses the config.toml from the
// .sedstart directory within the given base directory.
func loadConfig(baseDir string) *config.Config {
	data, err := os.ReadFile(filepath.Join(baseDir, ".sedstart", "config.toml"))
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	cfg := &config.Config{}
	ExpectWithOffset(1, toml.Unmarshal(data, cfg)).To(Succeed())
	return cfg
}
