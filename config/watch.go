package config

import (
	"fmt"
	"log"
	"os"

	"timeout-helper/model"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// WatchSettings calls onChange with freshly decoded settings whenever the
// settings file at path is written. Invalid edits are logged and skipped so
// the running settings stay in effect. Once done is closed changes are
// ignored; viper offers no way to stop its watcher goroutine itself.
func WatchSettings(path string, onChange func(model.Settings), done <-chan struct{}) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch settings: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watch settings: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		select {
		case <-done:
			return
		default:
		}
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		settings, err := decodeSettings(v)
		if err != nil {
			log.Printf("[Config] Ignoring invalid settings change in %s: %v", e.Name, err)
			return
		}
		log.Printf("[Config] Settings reloaded from %s", e.Name)
		onChange(settings)
	})
	v.WatchConfig()
	return nil
}
