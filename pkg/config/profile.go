package config

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/Fairwater-Labs/drip/pkg/revenue"
)

// Profile describes one funding relationship for a host to feed to Init.
// The amount is a decimal string: it is a 128-bit quantity and YAML integers
// are not wide enough.
type Profile struct {
	Receiver   string `yaml:"receiver" json:"receiver"`
	Asset      string `yaml:"asset" json:"asset"`
	StartEpoch int64  `yaml:"start_epoch" json:"start_epoch"`
	Amount     string `yaml:"amount" json:"amount"`
	Step       int64  `yaml:"step" json:"step"`
}

const profileSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["receiver", "asset", "start_epoch", "amount", "step"],
	"properties": {
		"receiver": {"type": "string", "minLength": 1},
		"asset": {"type": "string", "minLength": 1},
		"start_epoch": {"type": "integer", "minimum": 0},
		"amount": {"type": "string", "pattern": "^-?[0-9]+$"},
		"step": {"type": "integer", "minimum": 1}
	},
	"additionalProperties": false
}`

var compiledProfileSchema = jsonschema.MustCompileString("profile.json", profileSchema)

// LoadProfile reads and validates a funding profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return ParseProfile(raw)
}

// ParseProfile validates YAML bytes against the profile schema and decodes
// them.
func ParseProfile(raw []byte) (*Profile, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}

	// Round-trip through JSON so the schema validator sees the value shapes
	// it expects.
	jsonRaw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize profile: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(jsonRaw, &normalized); err != nil {
		return nil, fmt.Errorf("failed to normalize profile: %w", err)
	}

	if err := compiledProfileSchema.Validate(normalized); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	var p Profile
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &p, nil
}

// InitParams converts the profile into engine init parameters.
func (p *Profile) InitParams() (revenue.InitParams, error) {
	amount, ok := new(big.Int).SetString(p.Amount, 10)
	if !ok {
		return revenue.InitParams{}, fmt.Errorf("invalid amount %q", p.Amount)
	}
	return revenue.InitParams{
		Receiver:   p.Receiver,
		Asset:      p.Asset,
		StartEpoch: p.StartEpoch,
		Amount:     amount,
		Step:       p.Step,
	}, nil
}
