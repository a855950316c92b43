package output

import (
	"time"

	"github.com/ccollicutt/qsolog/pkg/exchange"
)

func createTestResult() *exchange.Result {
	start := time.Date(2024, 9, 27, 22, 1, 0, 0, time.UTC)
	end := start.Add(15 * time.Second)

	return &exchange.Result{
		Exchanges: []*exchange.Exchange{
			{
				ID:             "qso-1",
				Correspondent:  "K3TJB",
				Start:          start,
				End:            &end,
				Band:           "20m",
				Frequency:      "14.074",
				FrequencyMHz:   14.074,
				Mode:           "FT8",
				Location:       "EM77",
				ReportSent:     "-09",
				ReportReceived: "+02",
				Messages:       []string{"K3TJB M7KCM EM77", "M7KCM K3TJB 73"},
				Status:         exchange.StatusClosed,
				Source:         "ALL.TXT",
				LineNum:        1,
			},
			{
				ID:            "qso-2",
				Correspondent: "W1AW",
				Start:         start.Add(time.Minute),
				Band:          "20m",
				Frequency:     "14.074",
				FrequencyMHz:  14.074,
				Mode:          "FT8",
				Messages:      []string{"W1AW M7KCM FN31"},
				Status:        exchange.StatusOpen,
				Source:        "ALL.TXT",
				LineNum:       4,
			},
		},
		Stats: exchange.Stats{
			TotalLines:           10,
			ContributingLines:    3,
			NonContributingLines: 5,
			UnmatchedLines:       2,
			ExchangesCreated:     2,
			ExchangesClosed:      1,
		},
		Sources:   []string{"ALL.TXT"},
		StartTime: start,
		EndTime:   start.Add(50 * time.Millisecond),
	}
}

func createTestReport() *Report {
	return NewReport(createTestResult(), ReportOptions{
		OutputFile: "output_log.adi",
		Callsign:   "M7KCM",
		Grid:       "IO91",
	})
}
