package cytoband

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is a depth in the band hierarchy.
type Level int

const (
	LevelChromosome Level = iota
	LevelArm
	LevelRegion
	LevelBand
	LevelSubBand
)

func (l Level) String() string {
	switch l {
	case LevelChromosome:
		return "chromosome"
	case LevelArm:
		return "arm"
	case LevelRegion:
		return "region"
	case LevelBand:
		return "band"
	case LevelSubBand:
		return "subBand"
	default:
		return "unknown"
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLevel parses a single level name. "subband" and "sub-band" are
// accepted for the original option spelling.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chromosome":
		return LevelChromosome, nil
	case "arm":
		return LevelArm, nil
	case "region":
		return LevelRegion, nil
	case "band":
		return LevelBand, nil
	case "subband", "sub-band", "sub_band":
		return LevelSubBand, nil
	}
	return 0, fmt.Errorf("unknown hierarchy level %q", s)
}

// ParseLinkLevels parses a centromere-levels option. "all" expands to
// region, band and subBand. An empty value yields the band default.
func ParseLinkLevels(s string) ([]Level, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return []Level{LevelBand}, nil
	case "all":
		return []Level{LevelSubBand, LevelBand, LevelRegion}, nil
	}
	l, err := ParseLevel(s)
	if err != nil {
		return nil, err
	}
	if l == LevelChromosome {
		return nil, fmt.Errorf("centromere links cannot be placed at the %s level", l)
	}
	return []Level{l}, nil
}

// Arm is the short (p) or long (q) chromosome arm.
type Arm byte

const (
	ArmP Arm = 'p'
	ArmQ Arm = 'q'
)

func (a Arm) String() string {
	return string(rune(a))
}

func (a Arm) MarshalText() ([]byte, error) {
	return []byte{byte(a)}, nil
}

// BandPath is a decomposed band designation. Depth is the deepest level
// present; segments below Depth are zero.
type BandPath struct {
	Arm     Arm
	Region  int
	Band    int
	SubBand string // digits after the decimal point
	Depth   Level
}

// SubBandValue is the numeric value of the sub-band digits.
func (p BandPath) SubBandValue() int {
	n, _ := strconv.Atoi(p.SubBand)
	return n
}

// Prefix truncates the path to the given level.
func (p BandPath) Prefix(l Level) BandPath {
	if l >= p.Depth {
		return p
	}
	out := BandPath{Arm: p.Arm, Depth: l}
	if l >= LevelRegion {
		out.Region = p.Region
	}
	if l >= LevelBand {
		out.Band = p.Band
	}
	return out
}

// String renders the designation, e.g. "p36.33", "q2", "p".
func (p BandPath) String() string {
	var b strings.Builder
	b.WriteByte(byte(p.Arm))
	if p.Depth >= LevelRegion {
		b.WriteString(strconv.Itoa(p.Region))
	}
	if p.Depth >= LevelBand {
		b.WriteString(strconv.Itoa(p.Band))
	}
	if p.Depth >= LevelSubBand {
		b.WriteByte('.')
		b.WriteString(p.SubBand)
	}
	return b.String()
}

// Compare orders paths by arm, then numerically per level, shallower first.
func (p BandPath) Compare(o BandPath) int {
	if p.Arm != o.Arm {
		return cmpInt(int(p.Arm), int(o.Arm))
	}
	if c := cmpLevelValue(p, o, LevelRegion, p.Region, o.Region); c != 0 {
		return c
	}
	if c := cmpLevelValue(p, o, LevelBand, p.Band, o.Band); c != 0 {
		return c
	}
	if c := cmpLevelValue(p, o, LevelSubBand, p.SubBandValue(), o.SubBandValue()); c != 0 {
		return c
	}
	return strings.Compare(p.SubBand, o.SubBand)
}

func cmpLevelValue(p, o BandPath, l Level, a, b int) int {
	hasP, hasO := p.Depth >= l, o.Depth >= l
	switch {
	case !hasP && !hasO:
		return 0
	case !hasP:
		return -1
	case !hasO:
		return 1
	}
	return cmpInt(a, b)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ArmPath is the path of the arm root itself.
func ArmPath(a Arm) BandPath {
	return BandPath{Arm: a, Depth: LevelArm}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// IsCentromereMarker reports whether a designation names the centromere
// boundary rather than a band.
func IsCentromereMarker(designation string) bool {
	return strings.EqualFold(strings.TrimSpace(designation), "cen")
}

// Decompose splits a designation into its hierarchy levels. The grammar is
//
//	<arm><region>[<band>[.<subBand>]]
//
// with arm p or q, region and band one digit each and one or more sub-band
// digits. The centromere marker returns ErrCentromereMarker.
func Decompose(designation string) (BandPath, error) {
	if IsCentromereMarker(designation) {
		return BandPath{}, ErrCentromereMarker
	}
	invalid := func(reason string) (BandPath, error) {
		return BandPath{}, &InvalidNomenclatureError{Designation: designation, Reason: reason}
	}

	s := designation
	if s == "" {
		return invalid("empty designation")
	}

	path := BandPath{}
	switch Arm(s[0]) {
	case ArmP, ArmQ:
		path.Arm = Arm(s[0])
	default:
		return invalid("missing arm (expected p or q)")
	}
	s = s[1:]

	if len(s) == 0 || !isDigit(s[0]) {
		return invalid("missing region digit")
	}
	path.Region = int(s[0] - '0')
	path.Depth = LevelRegion
	s = s[1:]
	if len(s) == 0 {
		return path, nil
	}

	if !isDigit(s[0]) {
		return invalid("unexpected character after region")
	}
	path.Band = int(s[0] - '0')
	path.Depth = LevelBand
	s = s[1:]
	if len(s) == 0 {
		return path, nil
	}

	if s[0] != '.' {
		return invalid("region and band must be single digits")
	}
	s = s[1:]
	if len(s) == 0 {
		return invalid("missing sub-band digits")
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return invalid("sub-band must be digits")
		}
	}
	path.SubBand = s
	path.Depth = LevelSubBand
	return path, nil
}
