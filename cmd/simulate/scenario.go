package simulate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"signalengine/src/model"
)

// Duration reads Go duration strings such as "90s" or "4h" from JSON.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Step advances the clock, submits signals, then applies one price tick.
type Step struct {
	Advance Duration           `json:"advance"`
	Signals []model.Signal     `json:"signals"`
	Prices  map[string]float64 `json:"prices"`
}

type Scenario struct {
	Name           string    `json:"name"`
	InitialBalance float64   `json:"initial_balance"`
	Start          time.Time `json:"start"`
	SlippageBps    *float64  `json:"slippage_bps"`
	FeeRate        *float64  `json:"fee_rate"`
	Steps          []Step    `json:"steps"`
}

func ParseScenario(r io.Reader) (*Scenario, error) {
	var s Scenario
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if s.InitialBalance <= 0 {
		return nil, fmt.Errorf("invalid scenario: initial_balance must be positive")
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("invalid scenario: no steps")
	}
	if s.Start.IsZero() {
		s.Start = time.Now().UTC().Truncate(time.Minute)
	}
	for i := range s.Steps {
		for j := range s.Steps[i].Signals {
			if s.Steps[i].Signals[j].Timestamp.IsZero() {
				s.Steps[i].Signals[j].Timestamp = s.Start
			}
		}
	}
	return &s, nil
}

func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseScenario(f)
}
