package dataprocessing

// Well-known column names of the inspection workbooks. The coercion
// policies and the ERF merge key on exact header strings, so these must
// match the synthesized headers byte for byte.
const (
	logDistanceColumn     = "Log distance [m]"
	maxDepthPercentColumn = "Max. depth [%]"
	commentsColumn        = "Comments"

	erfModifiedColumn = "ERF (Modified)"
	erfNormalColumn   = "ERF (metal loss)"
	erfMergedColumn   = "ERF"
)

// threeDecimalColumns are rendered as fixed three-decimal strings.
var threeDecimalColumns = []string{
	"Altitude [m]",
	"Joint / component length [m]",
	"Abs. Dist. to upstream weld [m]",
	"Remaining thickness [mm]",
}

// twoDecimalColumns get the compensated half-up rounding before rendering
// as fixed two-decimal strings.
var twoDecimalColumns = []string{
	"Nominal Internal diameter [mm]",
	"Max. depth [mm]",
}

// integerColumns round half away from zero to whole-number strings.
var integerColumns = []string{
	"Length [mm]",
	"Width [mm]",
}
