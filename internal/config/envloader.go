package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// envParser converts the value of one SIGSCAN_* variable into a field value.
type envParser struct {
	what  string
	parse func(string) (any, error)
}

// envParsers covers every field type Settings uses.
var envParsers = map[reflect.Type]envParser{
	reflect.TypeFor[string](): {"string", func(s string) (any, error) {
		return s, nil
	}},
	reflect.TypeFor[bool](): {"boolean", func(s string) (any, error) {
		return strconv.ParseBool(s)
	}},
	reflect.TypeFor[time.Duration](): {"duration", func(s string) (any, error) {
		return time.ParseDuration(s)
	}},
	reflect.TypeFor[[]string](): {"list", func(s string) (any, error) {
		return splitList(s), nil
	}},
}

// LoadFromEnv overrides settings with the SIGSCAN_* variables named by the
// `env` tags of Settings and its nested sections. Unset or empty variables
// leave the current value in place.
func LoadFromEnv(s *Settings) error {
	if s == nil {
		return nil
	}
	return applyEnv(reflect.ValueOf(s).Elem())
}

func applyEnv(section reflect.Value) error {
	for i := range section.NumField() {
		field, sf := section.Field(i), section.Type().Field(i)

		if sf.Type.Kind() == reflect.Struct {
			if err := applyEnv(field); err != nil {
				return err
			}
			continue
		}

		name := sf.Tag.Get("env")
		raw := os.Getenv(name)
		if name == "" || raw == "" {
			continue
		}

		p, ok := envParsers[sf.Type]
		if !ok {
			return fmt.Errorf("%s: no parser for %s field %s", name, sf.Type, sf.Name)
		}
		v, err := p.parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s for %s (%s): %w", p.what, sf.Name, name, err)
		}
		field.Set(reflect.ValueOf(v))
	}
	return nil
}

// splitList splits a comma-separated list, dropping blank items.
func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
