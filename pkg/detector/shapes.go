package detector

import "regexp"

// LineShape is a known contact-log line layout. Unmatched lines are tested
// against these so the inspect report can say what they look like.
type LineShape struct {
	Name    string         // Human-readable name
	Pattern *regexp.Regexp // Matched against unmatched lines
	Hint    string         // What to do about lines of this shape
	Example string
}

// DefaultShapes returns the line layouts recognized in unmatched lines.
// Shapes are ordered by specificity; the first match names a line.
func DefaultShapes() []*LineShape {
	shapes := []*LineShape{
		{
			Name:    "WSJT-X ALL.TXT",
			Pattern: regexp.MustCompile(`^\d{6}_\d{6}\s+\d+\.\d+\s+(Rx|Tx)\s+`),
			Hint:    "Line starts like a current ALL.TXT entry; check for a missing field or invalid date",
			Example: "240927_220100    14.074 Rx FT8    -15 -0.0  373 K3TJB M7KCM EM77",
		},
		{
			Name:    "JTDX ALL.TXT",
			Pattern: regexp.MustCompile(`^\d{8}_\d{6}\s+[+-]?\d+\s+[+-]?\d+\.\d+\s+\d+\s+\S\s+`),
			Hint:    "Eight-digit dates and no frequency column; convert the log first",
			Example: "20240927_220100  -15 -0.0  373 ~  K3TJB M7KCM EM77",
		},
		{
			Name:    "WSJT-X legacy band header",
			Pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}(:\d{2})?\s+\d+\.\d+ MHz`),
			Hint:    "Older WSJT-X logs record the band on separate header lines; these are ignored",
			Example: "2019-06-23 12:34  14.074 MHz  FT8",
		},
		{
			Name:    "WSJT-X legacy decode",
			Pattern: regexp.MustCompile(`^\d{4,6}\s+[+-]?\d+\s+[+-]?\d+\.\d+\s+\d+\s+\S\s+`),
			Hint:    "Older WSJT-X decodes carry no date or frequency and cannot be converted",
			Example: "123445  -10  0.2 1234 ~  CQ K1ABC FN42",
		},
	}

	return shapes
}
