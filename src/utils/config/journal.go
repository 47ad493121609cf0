package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	JournalDriverMemory   = "memory"
	JournalDriverPostgres = "postgres"
)

type Journal struct {
	// Where publication progress is persisted
	Driver string

	// How long records are kept by the memory journal
	MemoryExpiration time.Duration
}

func setJournalDefaults(v *viper.Viper) {
	v.SetDefault("Journal.Driver", JournalDriverMemory)
	v.SetDefault("Journal.MemoryExpiration", "168h")
}
