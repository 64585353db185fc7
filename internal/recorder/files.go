package recorder

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"SessionScreener/internal/model"
)

const (
	// ResultsFile is the tab-separated results file name inside the output dir.
	ResultsFile   = "screener_results.txt"
	resultsHeader = "Serial\tTickerNo\tTicker\tOpen16hDay-1\n"
)

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteResults writes results in serial order to dir/screener_results.txt.
func WriteResults(dir string, results []model.Result) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, ResultsFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	w.WriteString(resultsHeader)
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", r.Serial, r.TickerIndex, r.Ticker, formatPrice(r.Anchor))
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}
	log.Info().Str("path", path).Int("results", len(results)).Msg("results saved")
	return path, nil
}

// RawDumper writes each fetched series to dir/<TICKER>_raw_data.csv.
type RawDumper struct {
	Dir string
}

// ErrUnsafeTicker is returned for symbols that cannot be used as a file name.
var ErrUnsafeTicker = errors.New("ticker is not a safe file name")

// DumpBars implements the screener's bar sink.
func (d *RawDumper) DumpBars(ticker string, bars []model.Bar) error {
	if ticker == "" || strings.ContainsAny(ticker, `/\`) || strings.Contains(ticker, "..") {
		return fmt.Errorf("%w: %q", ErrUnsafeTicker, ticker)
	}
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(d.Dir, ticker+"_raw_data.csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"Datetime", "Open", "High", "Low", "Close", "Volume"})
	for _, b := range bars {
		w.Write([]string{
			b.Time.Format("2006-01-02 15:04:05-07:00"),
			formatPrice(b.Open),
			formatPrice(b.High),
			formatPrice(b.Low),
			formatPrice(b.Close),
			formatPrice(b.Volume),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Debug().Str("ticker", ticker).Str("path", path).Msg("raw data saved")
	return nil
}
