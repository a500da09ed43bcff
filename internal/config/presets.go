package config

import "sort"

func preset(mutate func(c *Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"binary": {
		"default": preset(func(c *Config) {
			c.Scenario = "binary"
			c.Bodies = 2
			c.Gravity.Mode = "direct"
			c.Gravity.G = 6.674e-11
			c.Gravity.FieldY = 0
			c.Collision.Strategy = "brute-force"
			c.Streams = nil
			c.SpawnActive = false
			c.Track = TrackConfig{Mode: "pair", Bodies: []int{0, 1}, Duration: 10}
		}),
	},
	"galaxy": {
		"small": preset(func(c *Config) {
			c.Scenario = "galaxy"
			c.Bodies = 300
			c.Gravity.G = 1
			c.Gravity.FieldY = 0
			c.Collision.Strategy = "tree"
			c.Streams = nil
			c.Timing.SubSteps = 4
		}),
		"large": preset(func(c *Config) {
			c.Scenario = "galaxy"
			c.Bodies = 2000
			c.Gravity.G = 1
			c.Gravity.FieldY = 0
			c.Collision.Strategy = "tree"
			c.Streams = nil
			c.Timing.SubSteps = 2
		}),
	},
	"rain": {
		"light": preset(func(c *Config) {
			c.Scenario = "rain"
			c.Bodies = 150
			c.Gravity.Mode = "off"
			c.Streams = nil
		}),
		"heavy": preset(func(c *Config) {
			c.Scenario = "rain"
			c.Bodies = 1200
			c.Gravity.Mode = "off"
			c.Restitution = 0.3
			c.Streams = nil
		}),
	},
	"random": {
		"default": preset(func(c *Config) {
			c.Scenario = "random"
			c.Bodies = 50
			c.Gravity.Mode = "direct"
			c.Gravity.FieldY = 0
			c.Streams = nil
			c.SpawnActive = false
		}),
	},
	"streams": {
		"single": preset(func(c *Config) {
			c.Scenario = "streams"
			c.Bodies = 0
		}),
		"fountain": preset(func(c *Config) {
			c.Scenario = "streams"
			c.Bodies = 0
			c.Gravity.Mode = "off"
			c.Streams = []StreamConfig{
				{X: 60, Y: 80, VX: 120, VY: -40, Rate: 30, Count: 2, Mass: 5, Radius: 4, ColorTag: 0},
				{X: 350, Y: 40, VX: 0, VY: 60, Rate: 30, Count: 3, Mass: 5, Radius: 4, ColorTag: 1},
				{X: 650, Y: 80, VX: -120, VY: -40, Rate: 30, Count: 2, Mass: 5, Radius: 4, ColorTag: 2},
			}
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scenario, name string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListScenarios() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
