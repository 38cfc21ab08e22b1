package stock

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/araddon/dateparse"
	"github.com/oarkflow/errors"
	"github.com/sirupsen/logrus"
)

// errMissingPrice marks a row without a traded price, as exports write for halted days
var errMissingPrice = errors.New("missing price")

var headerAliases = map[string]string{
	"symbol":     "code",
	"code":       "code",
	"exchange":   "exchange",
	"date":       "date",
	"time":       "date",
	"open":       "open",
	"openprice":  "open",
	"high":       "high",
	"highprice":  "high",
	"low":        "low",
	"lowprice":   "low",
	"close":      "close",
	"closeprice": "close",
	"volume":     "volume",
	"vol":        "volume",
}

func blank(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || value == "-"
}

func parseFloat(value string) (float64, error) {
	if blank(value) {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", ""), 64)
}

// ReadCSV reads bars from r. The header row names the columns; code and exchange
// columns are optional and fall back to the given defaults. Rows with a blank
// or "-" price are skipped with a warning; a blank volume reads as 0.
func ReadCSV(r io.Reader, code, exchange string) (Bars, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewE(err, "unable to read csv header", "")
	}

	columns := map[string]int{}
	for i, name := range header {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
		if alias, ok := headerAliases[key]; ok {
			columns[alias] = i
		}
	}
	for _, required := range []string{"date", "open", "high", "low", "close"} {
		if _, ok := columns[required]; !ok {
			return nil, errors.New("csv header is missing column " + required)
		}
	}

	bars := Bars{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.NewE(err, fmt.Sprintf("unable to read csv line %d", line), "")
		}

		bar, err := barFromRecord(record, columns, code, exchange)
		if err == errMissingPrice {
			logrus.WithFields(logrus.Fields{"code": bar.Code, "line": line}).Warn("skipping csv row without price")
			continue
		}
		if err != nil {
			return nil, errors.NewE(err, fmt.Sprintf("csv line %d", line), "")
		}
		bars = append(bars, bar)
	}

	return Normalize(bars), nil
}

func barFromRecord(record []string, columns map[string]int, code, exchange string) (Bar, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	bar := Bar{Code: code, Exchange: exchange}
	if c := strings.TrimSpace(field("code")); c != "" {
		bar.Code = c
	}
	if e := strings.TrimSpace(field("exchange")); e != "" {
		bar.Exchange = e
	}

	date, err := dateparse.ParseAny(strings.TrimSpace(field("date")))
	if err != nil {
		return bar, err
	}
	bar.Date = Day(date)

	prices := []struct {
		name string
		dst  *float64
	}{
		{"open", &bar.Open},
		{"high", &bar.High},
		{"low", &bar.Low},
		{"close", &bar.Close},
		{"volume", &bar.Volume},
	}
	for _, p := range prices {
		if p.name != "volume" && blank(field(p.name)) {
			return bar, errMissingPrice
		}
		v, err := parseFloat(field(p.name))
		if err != nil {
			return bar, errors.NewE(err, p.name, "")
		}
		*p.dst = v
	}
	return bar, nil
}

// LoadCSVFile reads one csv file. The file name without extension is the default code.
func LoadCSVFile(filename, exchange string) (Bars, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.NewE(err, "problem opening input file", "")
	}
	defer file.Close()

	code := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return ReadCSV(file, code, exchange)
}

// LoadCSVDir reads every .csv file under directory into a MemoryProvider,
// parsing files concurrently
func LoadCSVDir(directory, exchange string) (*MemoryProvider, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errList []error
	loaded := map[string]Bars{}

	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			bars, err := LoadCSVFile(path, exchange)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errList = append(errList, errors.NewE(err, path, ""))
				return
			}
			loaded[path] = bars
		}(path)
		return nil
	})
	wg.Wait()
	if err != nil {
		return nil, errors.NewE(err, "unable to walk csv directory", "")
	}
	if len(errList) > 0 {
		return nil, fmt.Errorf("errors occurred: %v", errList)
	}

	// merge in path order so repeated dates resolve the same way every time
	paths := make([]string, 0, len(loaded))
	for path := range loaded {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	provider := NewMemoryProvider()
	for _, path := range paths {
		provider.Add(loaded[path]...)
	}
	return provider, nil
}
