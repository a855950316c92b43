package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ccollicutt/qsolog/pkg/exchange"
)

// ADIF date and time layouts.
const (
	adifDate = "20060102"
	adifTime = "1504"
)

// ADIFFormatter writes a report's selected records as an ADIF file.
type ADIFFormatter struct {
	header string
}

// NewADIFFormatter creates an ADIF formatter. The header is free text
// written before <EOH>.
func NewADIFFormatter(header string) *ADIFFormatter {
	return &ADIFFormatter{header: header}
}

// Name returns the format name.
func (f *ADIFFormatter) Name() string {
	return "adif"
}

// Format renders report.Records as ADIF.
func (f *ADIFFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	bw := bufio.NewWriter(w)

	header := strings.TrimRight(f.header, "\r\n")
	if header != "" {
		fmt.Fprintln(bw, header)
	}
	fmt.Fprintln(bw, "<EOH>")

	for i, ex := range report.Records {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		writeRecord(bw, ex, report.Metadata.Callsign, report.Metadata.Grid)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing ADIF: %w", err)
	}
	return nil
}

// writeRecord writes one exchange as a single-line record. Required fields
// are always present, with length 0 when the value is unknown.
func writeRecord(w io.Writer, ex *exchange.Exchange, operator, myGrid string) {
	start := ex.Start.UTC()

	writeField(w, "CALL", ex.Correspondent)
	writeField(w, "BAND", ex.Band)
	writeField(w, "FREQ", frequency(ex))
	writeField(w, "MODE", ex.Mode)
	writeField(w, "QSO_DATE", start.Format(adifDate))
	writeField(w, "TIME_ON", start.Format(adifTime))
	writeField(w, "RST_SENT", ex.ReportSent)
	writeField(w, "RST_RCVD", ex.ReportReceived)
	writeField(w, "MY_GRIDSQUARE", myGrid)
	writeField(w, "GRIDSQUARE", ex.Location)

	if ex.End != nil {
		end := ex.End.UTC()
		writeField(w, "QSO_DATE_OFF", end.Format(adifDate))
		writeField(w, "TIME_OFF", end.Format(adifTime))
	}
	if operator != "" {
		writeField(w, "OPERATOR", operator)
		writeField(w, "STATION_CALLSIGN", operator)
	}

	fmt.Fprintln(w, "<EOR>")
}

// writeField writes <NAME:len>value where len is the value's character count.
func writeField(w io.Writer, name, value string) {
	fmt.Fprintf(w, "<%s:%d>%s", name, utf8.RuneCountInString(value), value)
}

// frequency keeps the log's own text so no precision is invented.
func frequency(ex *exchange.Exchange) string {
	if ex.Frequency != "" {
		return ex.Frequency
	}
	if ex.FrequencyMHz == 0 {
		return ""
	}
	return strconv.FormatFloat(ex.FrequencyMHz, 'f', -1, 64)
}
