package config

// SetConfigPathForTest points the tracking settings at a TOML file for
// testing purposes
func (t *Tracking) SetConfigPathForTest(path string) {
	t.configPath = path
}
