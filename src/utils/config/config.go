package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Prefix of every environment variable read by the publisher
const ENV_PREFIX = "PUBLISHER_"

// Returned when the configuration can't be used to start the publisher
var ErrConfig = errors.New("configuration error")

// Config stores global configuration
type Config struct {
	// Is development mode on
	IsDevelopment bool

	// REST API address. API used for monitoring and for accepting publications.
	RESTListenAddress string

	// Maximum time publisher will be closing before stop is forced.
	StopTimeout time.Duration

	// Logging level
	LogLevel string

	Ipfs      Ipfs
	Chain     Chain
	Publisher Publisher
	Journal   Journal
	Database  Database
	Redis     Redis
	Profiler  Profiler
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("IsDevelopment", "false")
	v.SetDefault("RESTListenAddress", ":7777")
	v.SetDefault("LogLevel", "DEBUG")
	v.SetDefault("StopTimeout", "30s")

	setIpfsDefaults(v)
	setChainDefaults(v)
	setPublisherDefaults(v)
	setJournalDefaults(v)
	setDatabaseDefaults(v)
	setRedisDefaults(v)
	setProfilerDefaults(v)
}

// Default configuration, without reading any file. Env variables are still applied.
func Default() (config *Config) {
	config, _ = Load("")
	return
}

// Visits every field and registers upper snake case ENV name for it
// Works with embedded structs
func BindEnv(v *viper.Viper, path []string, val reflect.Value) {
	if val.Kind() != reflect.Struct {
		key := strings.ToLower(strings.Join(path, "."))
		env := ENV_PREFIX + strcase.ToScreamingSnake(strings.Join(path, "_"))
		err := v.BindEnv(key, env)
		if err != nil {
			panic(err)
		}
		return
	}

	for i := 0; i < val.NumField(); i++ {
		newPath := make([]string, len(path))
		copy(newPath, path)
		newPath = append(newPath, val.Type().Field(i).Name)
		BindEnv(v, newPath, val.Field(i))
	}
}

func defaultDecoderConfig(c *mapstructure.DecoderConfig) {
	c.WeaklyTypedInput = true
	c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// Load configuration from file and env
func Load(filename string) (config *Config, err error) {
	v := viper.New()
	v.SetConfigType("json")

	setDefaults(v)

	BindEnv(v, []string{}, reflect.ValueOf(Config{}))

	// Empty filename means we use default values
	if filename != "" {
		var content []byte
		/* #nosec */
		content, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}

		err = v.ReadConfig(bytes.NewBuffer(content))
		if err != nil {
			return nil, err
		}
	}

	config = new(Config)
	err = v.Unmarshal(config, defaultDecoderConfig)
	if err != nil {
		return nil, err
	}

	return
}

// Checks values that are required to start publishing.
// Contract addresses are only checked for presence, their format is verified when contracts are bound.
func (self *Config) Validate() error {
	var missing []string
	required := map[string]string{
		"Ipfs.ProjectId":           self.Ipfs.ProjectId,
		"Ipfs.ProjectSecret":       self.Ipfs.ProjectSecret,
		"Chain.NftAddress":         self.Chain.NftAddress,
		"Chain.MarketplaceAddress": self.Chain.MarketplaceAddress,
	}
	for _, name := range []string{"Ipfs.ProjectId", "Ipfs.ProjectSecret", "Chain.NftAddress", "Chain.MarketplaceAddress"} {
		if strings.TrimSpace(required[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfig, strings.Join(missing, ", "))
	}

	switch self.Publisher.TokenIdSource {
	case TokenIdSourceEvent, TokenIdSourceCounter:
	default:
		return fmt.Errorf("%w: unknown Publisher.TokenIdSource %q", ErrConfig, self.Publisher.TokenIdSource)
	}

	switch self.Journal.Driver {
	case JournalDriverMemory, JournalDriverPostgres:
	default:
		return fmt.Errorf("%w: unknown Journal.Driver %q", ErrConfig, self.Journal.Driver)
	}

	if self.Chain.ConfirmationTimeout <= 0 {
		return fmt.Errorf("%w: Chain.ConfirmationTimeout must be positive", ErrConfig)
	}

	return nil
}
