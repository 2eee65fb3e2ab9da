package snapshot

import "time"

// Config controls the portfolio snapshot worker loop.
type Config struct {
	HorizonDays  int
	PollInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		HorizonDays:  30,
		PollInterval: 5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaults.HorizonDays
	}

	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	return c
}
