// Package state stores per-workspace justrun state in .justrun/state.yml.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// State is the workspace state as a generic map of key-value pairs.
type State map[string]interface{}

const lastRunKey = "last_run"

// Path returns the state file for the workspace rooted at dir.
func Path(dir string) string {
	return filepath.Join(dir, ".justrun", "state.yml")
}

// Load loads the state of the workspace rooted at dir.
// Returns an empty state if the file doesn't exist.
func Load(dir string) (State, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return make(State), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}

	if state == nil {
		state = make(State)
	}

	return state, nil
}

// Save writes state for the workspace rooted at dir.
func Save(dir string, state State) error {
	path := Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// Get retrieves a value from the state by key.
func Get(dir, key string) (interface{}, bool, error) {
	state, err := Load(dir)
	if err != nil {
		return nil, false, err
	}

	val, ok := state[key]
	return val, ok, nil
}

// GetString returns "" if the key doesn't exist or the value is not a string.
func GetString(dir, key string) (string, error) {
	val, ok, err := Get(dir, key)
	if err != nil || !ok {
		return "", err
	}

	str, _ := val.(string)
	return str, nil
}

// Set sets a value in the state.
func Set(dir, key string, value interface{}) error {
	state, err := Load(dir)
	if err != nil {
		return err
	}

	state[key] = value
	return Save(dir, state)
}

// Delete removes a key from the state.
func Delete(dir, key string) error {
	state, err := Load(dir)
	if err != nil {
		return err
	}

	delete(state, key)
	return Save(dir, state)
}

// LastRun remembers the most recent recipe dispatched in a workspace.
type LastRun struct {
	Recipe string            `yaml:"recipe"`
	Inputs map[string]string `yaml:"inputs,omitempty"`
	Mode   string            `yaml:"mode,omitempty"`
	RunID  string            `yaml:"run_id,omitempty"`
	At     time.Time         `yaml:"at"`
}

// SaveLastRun records run under the last_run key.
func SaveLastRun(dir string, run LastRun) error {
	return Set(dir, lastRunKey, run)
}

// LoadLastRun returns the recorded last run, if any.
func LoadLastRun(dir string) (LastRun, bool, error) {
	raw, ok, err := Get(dir, lastRunKey)
	if err != nil || !ok {
		return LastRun{}, false, err
	}

	var run LastRun
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &run,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	})
	if err != nil {
		return LastRun{}, false, err
	}
	if err := decoder.Decode(raw); err != nil {
		return LastRun{}, false, fmt.Errorf("decode last run: %w", err)
	}
	return run, run.Recipe != "", nil
}
