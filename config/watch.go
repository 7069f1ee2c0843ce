package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch re-reads the config file whenever it changes and passes the new,
// validated configuration to apply. Invalid edits are logged and ignored, so
// apply always sees a usable Config. v must have a config file set.
func Watch(v *viper.Viper, logger *slog.Logger, apply func(*Config)) {
	v.OnConfigChange(reloadHandler(v, logger, apply))
	v.WatchConfig()
}

func reloadHandler(v *viper.Viper, logger *slog.Logger, apply func(*Config)) func(fsnotify.Event) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := FromViper(v)
		if err != nil {
			logger.Warn("config.reload rejected", "file", e.Name, "error", err)
			return
		}
		logger.Info("config.reloaded", "file", e.Name, "op", e.Op.String())
		if apply != nil {
			apply(cfg)
		}
	}
}
