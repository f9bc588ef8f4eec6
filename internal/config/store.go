package config

import (
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ViperStore reads settings from a file under a section prefix. Both nested
// sections ({"csv-edit": {"quoteAllFields": true}}) and flat dotted keys
// ({"csv-edit.quoteAllFields": true}) are understood.
type ViperStore struct {
	v       *viper.Viper
	section string
}

// NewViperStore reads path. The format follows the file extension.
func NewViperStore(path, section string) (*ViperStore, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	return &ViperStore{v: v, section: section}, nil
}

// Section returns the key prefix.
func (s *ViperStore) Section() string {
	return s.section
}

func (s *ViperStore) Get(key string) (any, bool) {
	full := s.section + "." + key
	if !s.v.IsSet(full) {
		return nil, false
	}
	return s.v.Get(full), true
}

// Watch calls onChange after the file is rewritten and re-read. Reads
// made from onChange see the new contents.
func (s *ViperStore) Watch(onChange func()) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("settings changed", "file", e.Name, "op", e.Op.String())
		onChange()
	})
	s.v.WatchConfig()
}
