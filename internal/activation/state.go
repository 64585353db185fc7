package activation

import (
	"encoding/json"
	"os"
	"sort"
	"time"
)

// State is the persisted form of the activation map.
type State struct {
	Normal    []int     `json:"normal"`
	Inverted  []int     `json:"inverted"`
	UpdatedAt time.Time `json:"updated_at"`
}

func stateFrom(modes map[int]Mode) *State {
	st := &State{Normal: []int{}, Inverted: []int{}}
	for id, m := range modes {
		switch m {
		case Normal:
			st.Normal = append(st.Normal, id)
		case Inverted:
			st.Inverted = append(st.Inverted, id)
		}
	}
	sort.Ints(st.Normal)
	sort.Ints(st.Inverted)
	return st
}

// LoadState reads the activation state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the activation state to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
