package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// MessageOptions controls how a request notification is rendered. The section
// can be edited in the config file while the bot is running; use Messages for
// a consistent snapshot.
type MessageOptions struct {
	ShowPoster        bool   `mapstructure:"show_poster"`
	ShowYear          bool   `mapstructure:"show_year"`
	MovieEmoji        string `mapstructure:"movie_emoji"`
	TVEmoji           string `mapstructure:"tv_emoji"`
	RequesterFormat   string `mapstructure:"requester_format"`
	ShowSynopsis      bool     `mapstructure:"show_synopsis"`
	SynopsisMaxLength int      `mapstructure:"synopsis_max_length"`
	ShowCast          bool     `mapstructure:"show_cast"`
	CastMaxItems      int      `mapstructure:"cast_max_items"`
	ShowCrew          bool     `mapstructure:"show_crew"`
	CrewMaxItems      int      `mapstructure:"crew_max_items"`
	CrewRoles         []string `mapstructure:"crew_roles"`
	ShowRating        bool     `mapstructure:"show_rating"`
	ShowLinks         bool     `mapstructure:"show_links"`
}

func setMessageDefaults(v *viper.Viper) {
	v.SetDefault("message.show_poster", true)
	v.SetDefault("message.show_year", true)
	v.SetDefault("message.movie_emoji", "\U0001F3AC")
	v.SetDefault("message.tv_emoji", "\U0001F4FA")
	v.SetDefault("message.requester_format", "Requested by: {username}")
	v.SetDefault("message.show_synopsis", false)
	v.SetDefault("message.synopsis_max_length", 300)
	v.SetDefault("message.show_cast", false)
	v.SetDefault("message.cast_max_items", 5)
	v.SetDefault("message.show_crew", false)
	v.SetDefault("message.crew_max_items", 3)
	v.SetDefault("message.crew_roles", []string{"Director", "Producer", "Writer"})
	v.SetDefault("message.show_rating", false)
	v.SetDefault("message.show_links", false)
}

// Messages returns the current message options snapshot.
func (c *Config) Messages() MessageOptions {
	return *c.message.Load()
}

// ReloadMessages re-reads the config file and swaps in the message section.
// Other sections require a restart.
func (c *Config) ReloadMessages() (MessageOptions, error) {
	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c.Messages(), err
		}
	}
	// Unmarshal the whole tree so defaults still back any options the
	// edited file leaves out. UnmarshalKey would drop them.
	var snapshot struct {
		Message MessageOptions `mapstructure:"message"`
	}
	if err := c.v.Unmarshal(&snapshot); err != nil {
		return c.Messages(), err
	}
	opts := snapshot.Message
	c.message.Store(&opts)
	return opts, nil
}

// WatchMessages reloads the message section whenever the config file changes.
func (c *Config) WatchMessages(logger *slog.Logger) {
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if _, err := c.ReloadMessages(); err != nil {
			logger.Error("failed to reload message options", "error", err, "file", e.Name)
			return
		}
		logger.Info("message options reloaded", "file", e.Name)
	})
	c.v.WatchConfig()
}

// ConfigFile reports the config file in use, empty when running purely on
// environment variables and defaults.
func (c *Config) ConfigFile() string {
	return c.v.ConfigFileUsed()
}
