package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Watch reloads the config file behind v whenever it is written and passes the
// freshly decoded Root to fn. It is a no-op when v was loaded without a file.
// Reloads start from the defaults again so keys missing from the file keep
// their default values.
func Watch(v *viper.Viper, fn func(*Root)) bool {
	path := v.ConfigFileUsed()
	if path == "" {
		return false
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load(viper.New(), path)
		if err != nil {
			logrus.WithError(err).WithField("path", path).Error("config reload failed")
			return
		}
		logrus.WithField("path", path).Info("config reloaded")
		fn(cfg)
	})
	v.WatchConfig()
	return true
}
