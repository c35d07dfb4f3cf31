package layout

import (
	"github.com/BurntSushi/toml"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// Config holds the engine's spacing and geometry constants. All values are
// integers in a fixed virtual unit; rendering collaborators map them to
// device units. Config is engine configuration, never per-element state:
// two engines with equal configs produce identical layouts for the same
// sequence.
type Config struct {
	// FrameWidth is the x coordinate of the right power rail.
	FrameWidth int `toml:"frame_width"`

	// RailOffset is the x coordinate of the left power rail; RailInset is
	// how far the first element of a rail sits from its rail line.
	RailOffset int `toml:"rail_offset"`
	RailInset  int `toml:"rail_inset"`

	// ElementSpacing separates an element from the wire feeding it;
	// MinWireLength is the shortest wire segment drawn between elements.
	ElementSpacing int `toml:"element_spacing"`
	MinWireLength  int `toml:"min_wire_length"`

	// BranchSpacing is the vertical distance between rail slots.
	BranchSpacing int `toml:"branch_spacing"`

	// RungHeight is the base band height of a rung without branches or
	// comment; RungGap separates consecutive rungs.
	RungHeight int `toml:"rung_height"`
	RungGap    int `toml:"rung_gap"`

	// CommentLineHeight is the vertical space per comment line, added
	// above the rung's content.
	CommentLineHeight int `toml:"comment_line_height"`

	// Per-category symbol sizes.
	ContactWidth  int `toml:"contact_width"`
	ContactHeight int `toml:"contact_height"`
	CoilWidth     int `toml:"coil_width"`
	CoilHeight    int `toml:"coil_height"`
	BlockWidth    int `toml:"block_width"`
	BlockHeight   int `toml:"block_height"`

	// MarkerWidth is the drawn thickness of branch wire posts.
	MarkerWidth int `toml:"marker_width"`
}

// DefaultConfig returns the stock geometry used by the CLI and editor.
func DefaultConfig() Config {
	return Config{
		FrameWidth:        800,
		RailOffset:        40,
		RailInset:         10,
		ElementSpacing:    10,
		MinWireLength:     10,
		BranchSpacing:     40,
		RungHeight:        60,
		RungGap:           20,
		CommentLineHeight: 15,
		ContactWidth:      40,
		ContactHeight:     30,
		CoilWidth:         40,
		CoilHeight:        30,
		BlockWidth:        80,
		BlockHeight:       40,
		MarkerWidth:       2,
	}
}

// LoadConfig reads a TOML config file over the defaults, so partial files
// only override the keys they name.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, liberrors.Wrap(liberrors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects geometry that would collapse or invert the layout.
func (c Config) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"frame_width", c.FrameWidth},
		{"element_spacing", c.ElementSpacing},
		{"min_wire_length", c.MinWireLength},
		{"branch_spacing", c.BranchSpacing},
		{"rung_height", c.RungHeight},
		{"contact_width", c.ContactWidth},
		{"contact_height", c.ContactHeight},
		{"coil_width", c.CoilWidth},
		{"coil_height", c.CoilHeight},
		{"block_width", c.BlockWidth},
		{"block_height", c.BlockHeight},
	}
	for _, ch := range checks {
		if ch.value <= 0 {
			return liberrors.New(liberrors.ErrCodeInvalidConfig, "%s must be positive, got %d", ch.name, ch.value)
		}
	}
	if c.RailOffset < 0 || c.RailInset < 0 || c.RungGap < 0 || c.CommentLineHeight < 0 {
		return liberrors.New(liberrors.ErrCodeInvalidConfig, "offsets must not be negative")
	}
	if c.RailOffset+c.RailInset >= c.FrameWidth {
		return liberrors.New(liberrors.ErrCodeInvalidConfig,
			"rail offset %d leaves no room inside frame width %d", c.RailOffset+c.RailInset, c.FrameWidth)
	}
	return nil
}

// symbolSize returns the drawn width and height for an instruction category.
func (c Config) symbolSize(k rung.InstructionKind) (w, h int) {
	switch k {
	case rung.InstrContact:
		return c.ContactWidth, c.ContactHeight
	case rung.InstrCoil:
		return c.CoilWidth, c.CoilHeight
	}
	return c.BlockWidth, c.BlockHeight
}
