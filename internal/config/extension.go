package config

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/spf13/cast"
)

// ExtensionConfig holds the user's editor preferences. Each field is read
// from the settings store under the key in its setting tag; the default tag
// applies when the key is absent.
type ExtensionConfig struct {
	LastRowEnterBehavior     string `setting:"lastRowEnterBehavior" default:"default" json:"lastRowEnterBehavior"`
	LastColumnTabBehavior    string `setting:"lastColumnTabBehavior" default:"default" json:"lastColumnTabBehavior"`
	PreviewOptionsAppearance string `setting:"previewOptionsAppearance" default:"collapsed" json:"previewOptionsAppearance"`
	WriteOptionsAppearance   string `setting:"writeOptionsAppearance" default:"collapsed" json:"writeOptionsAppearance"`
	ReadOptionsAppearance    string `setting:"readOptionsAppearance" default:"collapsed" json:"readOptionsAppearance"`

	ReadOptionComment    string `setting:"readOption_comment" default:"#" json:"readOption_comment"`
	ReadOptionQuoteChar  string `setting:"readOption_quoteChar" default:"\"" json:"readOption_quoteChar"`
	ReadOptionEscapeChar string `setting:"readOption_escapeChar" default:"\"" json:"readOption_escapeChar"`
	ReadOptionDelimiter  string `setting:"readOption_delimiter" default:"" json:"readOption_delimiter"`
	ReadOptionHasHeader  bool   `setting:"readOption_hasHeader" default:"false" json:"readOption_hasHeader"`

	WriteOptionComment    string `setting:"writeOption_comment" default:"#" json:"writeOption_comment"`
	WriteOptionDelimiter  string `setting:"writeOption_delimiter" default:"" json:"writeOption_delimiter"`
	WriteOptionQuoteChar  string `setting:"writeOption_quoteChar" default:"\"" json:"writeOption_quoteChar"`
	WriteOptionEscapeChar string `setting:"writeOption_escapeChar" default:"\"" json:"writeOption_escapeChar"`
	WriteOptionHasHeader  bool   `setting:"writeOption_hasHeader" default:"false" json:"writeOption_hasHeader"`

	DoubleClickColumnHandleForcedWith int  `setting:"doubleClickColumnHandleForcedWith" default:"200" json:"doubleClickColumnHandleForcedWith"`
	OpenSourceFileAfterApply          bool `setting:"openSourceFileAfterApply" default:"false" json:"openSourceFileAfterApply"`
	SelectTextAfterBeginEditCell      bool `setting:"selectTextAfterBeginEditCell" default:"false" json:"selectTextAfterBeginEditCell"`
	QuoteAllFields                    bool `setting:"quoteAllFields" default:"false" json:"quoteAllFields"`
}

// Store is a read-only view of the host's settings.
type Store interface {
	// Get returns the value stored under key and whether it is present.
	Get(key string) (any, bool)
}

// MapStore is a Store over a plain map.
type MapStore map[string]any

func (m MapStore) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// DefaultExtensionConfig returns the preferences used when the store has
// nothing to say.
func DefaultExtensionConfig() ExtensionConfig {
	var cfg ExtensionConfig
	v := reflect.ValueOf(&cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		def := t.Field(i).Tag.Get("default")
		if def == "" {
			continue
		}
		if err := setField(v.Field(i), def); err != nil {
			panic(fmt.Sprintf("config: bad default for %s: %v", t.Field(i).Name, err))
		}
	}
	return cfg
}

// SettingKeys lists the keys LoadExtension reads, in declaration order.
func SettingKeys() []string {
	t := reflect.TypeOf(ExtensionConfig{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		keys = append(keys, t.Field(i).Tag.Get("setting"))
	}
	return keys
}

// LoadExtension reads every preference from store on top of the defaults.
// For each key that is absent, or whose value cannot be converted to the
// field's type, warn is called and the default is kept. warn may be nil.
func LoadExtension(store Store, section string, warn func(msg string)) ExtensionConfig {
	if warn == nil {
		warn = func(msg string) { slog.Warn(msg) }
	}

	cfg := DefaultExtensionConfig()
	v := reflect.ValueOf(&cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("setting")

		raw, ok := store.Get(key)
		if !ok || raw == nil {
			warn(fmt.Sprintf("Could not find option: %s in %s configuration", key, section))
			continue
		}

		if err := assign(v.Field(i), raw); err != nil {
			warn(fmt.Sprintf("Invalid value for option: %s in %s configuration: %v", key, section, err))
		}
	}

	return cfg
}

// assign converts raw to the kind of field and stores it.
func assign(field reflect.Value, raw any) error {
	switch field.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return err
		}
		field.SetString(s)
	case reflect.Int:
		n, err := cast.ToIntE(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}
