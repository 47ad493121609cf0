package config

import (
	"github.com/spf13/viper"
)

type Profiler struct {
	// Are profiling endpoints registered
	Enabled bool

	//BlockProfileRate
	BlockProfileRate int
}

func setProfilerDefaults(v *viper.Viper) {
	v.SetDefault("Profiler.Enabled", "false")
	v.SetDefault("Profiler.BlockProfileRate", "50")
}
