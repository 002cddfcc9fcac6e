package request

// ResponseFormat selects what the convert endpoint writes back.
type ResponseFormat int

const (
	FormatCodeSystem ResponseFormat = iota
	FormatSummary
)

func (f ResponseFormat) String() string {
	switch f {
	case FormatCodeSystem:
		return "codesystem"
	case FormatSummary:
		return "summary"
	default:
		return "codesystem"
	}
}

func NewResponseFormat(format string) ResponseFormat {
	switch format {
	case "summary":
		return FormatSummary
	case "codesystem", "json", "":
		return FormatCodeSystem
	default:
		return FormatCodeSystem // default to the code system document
	}
}
