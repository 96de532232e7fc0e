package config

import "fmt"

// Malformed line policies.
const (
	OnMalformedSkip  = "skip"
	OnMalformedAbort = "abort"
)

// InputConfig describes the record stream read by the ingest command.
type InputConfig struct {
	// Path of the input file; "-" or empty reads standard input.
	Path string `json:"path"`
	// Delimiter separates id, capacity and load. Defaults to ";".
	Delimiter string `json:"delimiter"`
	// Header tells whether the first line is a header to skip.
	Header bool `json:"header"`
	// OnMalformed is "skip" or "abort".
	OnMalformed string `json:"on_malformed"`
}

// SetDefaults applies fallback values for optional fields.
func (c *InputConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "-"
	}
	if c.Delimiter == "" {
		c.Delimiter = ";"
	}
	if c.OnMalformed == "" {
		c.OnMalformed = OnMalformedSkip
	}
}

// Validate checks the policy value.
func (c InputConfig) Validate() error {
	if c.OnMalformed != OnMalformedSkip && c.OnMalformed != OnMalformedAbort {
		return fmt.Errorf("unknown on_malformed policy %q", c.OnMalformed)
	}
	return nil
}

// ExportConfig selects where and how the ordered stations are written.
type ExportConfig struct {
	// Path of the output file; "-" or empty writes to standard output.
	Path string `json:"path"`
	// Format is "text", "csv" or "json".
	Format string `json:"format"`
}

// SetDefaults applies fallback values for optional fields.
func (c *ExportConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "-"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

// Validate checks the export format.
func (c ExportConfig) Validate() error {
	switch c.Format {
	case "text", "csv", "json":
		return nil
	}
	return fmt.Errorf("unknown format %q", c.Format)
}

// TreeConfig bounds the station tree.
type TreeConfig struct {
	// MaxStations caps the number of stations; zero means unbounded.
	MaxStations int `json:"max_stations"`
}

// Validate rejects negative bounds.
func (c TreeConfig) Validate() error {
	if c.MaxStations < 0 {
		return fmt.Errorf("max_stations must not be negative")
	}
	return nil
}
