package config_test

import (
	"curator/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Storage", func() {
	It("defaults to the memory backend", func() {
		cfg := loadValid(`storage {}`)
		Expect(cfg.Storage.Backend).To(Equal("memory"))
		Expect(cfg.Storage.Path).To(BeEmpty())
	})

	It("defaults the sqlite path", func() {
		cfg := loadValid(`storage { backend = "sqlite" }`)
		Expect(cfg.Storage.Path).To(Equal(".curator/store.db"))
	})

	It("leaves storage nil when the block is absent", func() {
		cfg := loadValid(minimalVarsHCL())
		Expect(cfg.Storage).To(BeNil())
		Expect(cfg.Progress).To(BeNil())
	})

	It("requires a dsn for postgres", func() {
		err := validateErr(`storage { backend = "postgres" }`)
		Expect(err).To(MatchError(ContainSubstring("storage: postgres backend requires dsn")))
	})

	It("accepts postgres with a dsn", func() {
		cfg := loadValid(`
storage {
  backend = "postgres"
  dsn     = "postgres://curator@localhost:5432/curator"
}
`)
		Expect(cfg.Storage.DSN).To(HavePrefix("postgres://"))
	})

	It("rejects unknown backends", func() {
		s := config.StorageConfig{Backend: "redis"}
		Expect(s.Validate()).To(MatchError(ContainSubstring("unknown backend 'redis'")))
	})
})

var _ = Describe("Progress", func() {
	It("accepts ws and wss urls", func() {
		Expect((&config.ProgressConfig{WebsocketURL: "ws://localhost:9000/p"}).Validate()).To(Succeed())
		Expect((&config.ProgressConfig{WebsocketURL: "wss://example.com/p"}).Validate()).To(Succeed())
	})

	It("rejects http urls", func() {
		err := validateErr(`progress { websocket_url = "http://localhost:9000" }`)
		Expect(err).To(MatchError(ContainSubstring("progress: websocket_url must use ws://")))
	})
})
