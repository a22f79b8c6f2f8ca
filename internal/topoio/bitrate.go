package topoio

// bitrate.go - §6 "Bitrate file (JSON)". Grounded on the same
// extension-selects-format idiom as topology.go and on
// original_source/src/core/bitrate.cpp's loader for the per-band spec
// discrimination: a modulation's spec is either a bare {"slots","reach"}
// object (C band only) or an array of single-key {band_char: {...}} objects
// for multi-band modulations. Negative slots or reach fail the whole load.

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/optnetsim/optnetsim"
)

type bandSpecDoc struct {
	Slots int     `json:"slots" yaml:"slots"`
	Reach float64 `json:"reach" yaml:"reach"`
}

// LoadBitrates reads a §6 bitrate file, keyed by bitrate-as-string (Gbps),
// each an array of single-key {modulation_name: spec} objects.
func LoadBitrates(filename string) (map[float64]*optnetsim.Bitrate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseBitrates(filename, data)
}

// ParseBitrates decodes data (format chosen by filename's extension) into a
// map of Gbps value to Bitrate.
func ParseBitrates(filename string, data []byte) (map[float64]*optnetsim.Bitrate, error) {
	var raw map[string][]map[string]json.RawMessage
	if isYAML(filename) {
		var yraw map[string][]map[string]any
		if err := yaml.Unmarshal(data, &yraw); err != nil {
			return nil, err
		}
		raw = make(map[string][]map[string]json.RawMessage, len(yraw))
		for k, mods := range yraw {
			converted := make([]map[string]json.RawMessage, 0, len(mods))
			for _, mod := range mods {
				entry := make(map[string]json.RawMessage, len(mod))
				for name, spec := range mod {
					b, err := json.Marshal(spec)
					if err != nil {
						return nil, err
					}
					entry[name] = b
				}
				converted = append(converted, entry)
			}
			raw[k] = converted
		}
	} else {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}

	out := make(map[float64]*optnetsim.Bitrate, len(raw))
	for key, mods := range raw {
		value, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return nil, fmt.Errorf("topoio: bitrate key %q is not numeric: %w", key, err)
		}
		bitrate, err := optnetsim.NewBitrate(value)
		if err != nil {
			return nil, err
		}
		for _, mod := range mods {
			for name, spec := range mod {
				slots, reach, err := parseModulationSpec(spec)
				if err != nil {
					return nil, fmt.Errorf("topoio: bitrate %s modulation %q: %w", key, name, err)
				}
				bitrate.AddModulation(name, slots, reach)
			}
		}
		out[value] = bitrate
	}
	return out, nil
}

// parseModulationSpec discriminates the two §6 spec shapes: a bare
// {"slots","reach"} object (C band only) or an array of single-key
// {band_char: {"slots","reach"}} objects for multi-band modulations.
func parseModulationSpec(raw json.RawMessage) (map[optnetsim.Band]int, map[optnetsim.Band]float64, error) {
	var single bandSpecDoc
	if err := json.Unmarshal(raw, &single); err == nil {
		if single.Slots < 0 || single.Reach < 0 {
			return nil, nil, fmt.Errorf("slots and reach must be non-negative")
		}
		return map[optnetsim.Band]int{optnetsim.BandC: single.Slots},
			map[optnetsim.Band]float64{optnetsim.BandC: single.Reach}, nil
	}

	var perBand []map[string]bandSpecDoc
	if err := json.Unmarshal(raw, &perBand); err != nil {
		return nil, nil, fmt.Errorf("unrecognized modulation spec shape")
	}
	slots := make(map[optnetsim.Band]int, len(perBand))
	reach := make(map[optnetsim.Band]float64, len(perBand))
	for _, entry := range perBand {
		for bandChar, spec := range entry {
			if spec.Slots < 0 || spec.Reach < 0 {
				return nil, nil, fmt.Errorf("slots and reach must be non-negative")
			}
			band, err := optnetsim.CharToBand(strings.ToUpper(bandChar)[0])
			if err != nil {
				return nil, nil, err
			}
			slots[band] = spec.Slots
			reach[band] = spec.Reach
		}
	}
	return slots, reach, nil
}
