package api

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"passguard/internal/util"
	"reflect"
	"strings"
)

// Config is read from the environment. Every field has a working
// default, so an empty environment serves against the public APIs.
type Config struct {
	HibpURL       string `mapstructure:"HIBP_URL"`
	XonURL        string `mapstructure:"XON_URL"`
	LeakCheckURL  string `mapstructure:"LEAKCHECK_URL"`
	SourceTimeout int    `mapstructure:"SOURCE_TIMEOUT" validate:"omitempty,min=1"`
	CacheMB       int64  `mapstructure:"CACHE_MB" validate:"omitempty,min=1"`
	Debug         bool   `mapstructure:"DEBUG"`
}

func bindEnvs(iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}
		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(v.Interface(), append(parts, tv)...)
		default:
			_ = viper.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("This field must be at least %s", fe.Param())
	}
	return fe.Error() // default error
}

func LoadConfig() (config Config, err error) {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// I hate this, but it works.
	// This is to not require a config file to unmarshal Envs in a struct
	// https://github.com/spf13/viper/issues/188#issuecomment-399884438
	config = Config{}
	bindEnvs(config)

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	validate := validator.New()
	if err = validate.Struct(&config); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			var msgs []string
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s: %s", util.ToScreamingSnakeCase(fe.Field()), msgForTag(fe)))
			}
			return config, errors.New(strings.Join(msgs, ". "))
		}
		return config, err
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.SourceTimeout == 0 {
		c.SourceTimeout = 10
	}
	if c.CacheMB == 0 {
		c.CacheMB = 32
	}
}
