package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// CellType identifies a cell kind. It doubles as the shop item id.
type CellType string

// Built-in cell types.
const (
	CellVoid        CellType = "void"
	CellCharm       CellType = "charm"
	CellUp          CellType = "up"
	CellDown        CellType = "down"
	CellStrange     CellType = "strange"
	CellTop         CellType = "top"
	CellGraviton    CellType = "graviton"
	CellHiggsBoson  CellType = "higgs boson"
	CellZBoson      CellType = "z boson"
	CellWBoson      CellType = "w boson"
	CellGluon       CellType = "gluon"
	CellSingularity CellType = "singularity"
)

// DecimalData is the persisted sign/layer/magnitude form of an
// arbitrary-magnitude number. Layer 0 stores sign*mag, layer 1 stores
// sign*10^mag and layer 2 stores sign*10^10^mag.
type DecimalData struct {
	Sign  int     `json:"sign" bson:"sign"`
	Layer int     `json:"layer" bson:"layer"`
	Mag   float64 `json:"mag" bson:"mag"`
}

// maxLayer bounds the persisted layer. Anything past it is saturated by the
// numeric codec anyway.
const maxLayer = 16

// UnmarshalJSON accepts the canonical object form, a bare number, a numeric
// string, or an object with missing fields. Saves written by older builds
// stored tiers in all of these shapes. Anything else, including booleans,
// arrays and non-numeric strings, decodes as zero so one bad value cannot
// discard the rest of a save.
func (d *DecimalData) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*d = DecimalData{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		sign, hasSign := lenientFloat(raw["sign"])
		layer, _ := lenientFloat(raw["layer"])
		mag, _ := lenientFloat(raw["mag"])
		out := DecimalData{Mag: mag}
		if layer > 0 {
			out.Layer = int(math.Min(layer, maxLayer))
		}
		switch {
		case hasSign:
			out.Sign = signOf(sign)
		default:
			out.Sign = signOf(out.Mag)
		}
		if out.Mag < 0 {
			out.Mag = -out.Mag
			if !hasSign {
				out.Sign = -1
			}
		}
		if math.IsInf(out.Mag, 0) {
			out.Mag = math.MaxFloat64
			out.Layer = max(out.Layer, 1)
		}
		if out.Mag == 0 && out.Layer == 0 {
			out.Sign = 0
		}
		*d = out
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			d.fromString(s)
		}
	default:
		d.fromString(string(data))
	}
	return nil
}

// lenientFloat reads a JSON number or numeric string. NaN and anything else
// report false.
func lenientFloat(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		raw = []byte(strings.TrimSpace(s))
	}
	f, err := parseFloat(string(raw))
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// fromString leaves d at zero when s is not a number.
func (d *DecimalData) fromString(s string) {
	f, err := parseFloat(strings.TrimSpace(s))
	if err != nil {
		return
	}
	switch {
	case math.IsNaN(f):
		*d = DecimalData{}
	case math.IsInf(f, 0):
		*d = DecimalData{Sign: signOf(f), Layer: 1, Mag: math.MaxFloat64}
	default:
		*d = DecimalData{Sign: signOf(f), Mag: math.Abs(f)}
	}
}

// parseFloat keeps the ±Inf or zero that strconv reports for out of range
// input.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) {
		return f, nil
	}
	return f, err
}

func signOf(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}

// CellRecord is the persisted state of one grid slot.
type CellRecord struct {
	Type      CellType    `json:"type" bson:"type"`
	Direction Direction   `json:"direction" bson:"direction"`
	Tier      DecimalData `json:"tier" bson:"tier"`
	X         int         `json:"x" bson:"x"`
	Y         int         `json:"y" bson:"y"`
}

// DefaultCellRecord returns the void, tier zero, facing up record for (x, y).
func DefaultCellRecord(x, y int) CellRecord {
	return CellRecord{
		Type:      CellVoid,
		Direction: DirectionUp,
		X:         x,
		Y:         y,
	}
}

// Coordinate returns the record's grid coordinate.
func (r CellRecord) Coordinate() Coordinate { return Coordinate{X: r.X, Y: r.Y} }

// GridSize is the persisted assembler grid size.
type GridSize struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// SaveStateVersion is the current save layout version.
const SaveStateVersion = 1

// SaveState is everything persisted between sessions.
type SaveState struct {
	Version    int                    `json:"version"`
	Grid       GridSize               `json:"grid"`
	Cells      map[string]CellRecord  `json:"cells"`
	Currencies map[string]DecimalData `json:"currencies"`
	SavedAt    time.Time              `json:"saved_at"`
}

// Clone returns a deep copy of the save state.
func (s SaveState) Clone() SaveState {
	out := s
	if s.Cells != nil {
		out.Cells = make(map[string]CellRecord, len(s.Cells))
		for k, v := range s.Cells {
			out.Cells[k] = v
		}
	}
	if s.Currencies != nil {
		out.Currencies = make(map[string]DecimalData, len(s.Currencies))
		for k, v := range s.Currencies {
			out.Currencies[k] = v
		}
	}
	return out
}
