// Package parser turns source bytes into raw records and picks a concrete
// parser by kind or by file extension.
package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"casetrend/internal/config"
	pcsv "casetrend/internal/parser/csv"
	pjson "casetrend/internal/parser/json"
	"casetrend/internal/parser/xlsx"
	"casetrend/pkg/records"
)

// Parser reads all records from r. skipped counts rows the parser could not
// turn into a record; they never reach the cleaner.
type Parser interface {
	Parse(r io.Reader) (recs []records.Record, skipped int, err error)
}

// ErrUnsupportedFormat is returned for a file extension or parser kind with no
// matching parser.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Supported parser kinds.
const (
	KindCSV  = "csv"
	KindTSV  = "tsv"
	KindJSON = "json"
	KindXLSX = "xlsx"
	KindAuto = "auto"
)

var extKinds = map[string]string{
	".csv":    KindCSV,
	".txt":    KindCSV,
	".tsv":    KindTSV,
	".json":   KindJSON,
	".ndjson": KindJSON,
	".xlsx":   KindXLSX,
}

// KindForPath maps a file name to its parser kind by extension,
// case-insensitively.
func KindForPath(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if k, ok := extKinds[ext]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// New builds the parser for kind. For KindAuto (or an empty kind) the kind is
// taken from name's extension.
func New(kind, name string, opt config.Options) (Parser, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" || kind == KindAuto {
		k, err := KindForPath(name)
		if err != nil {
			return nil, err
		}
		kind = k
	}

	switch kind {
	case KindCSV:
		return pcsv.NewParser(csvOptions(opt)), nil
	case KindTSV:
		return pcsv.NewTSVParser(csvOptions(opt)), nil
	case KindJSON:
		return pjson.NewParser(pjson.FromConfigOptions(opt)), nil
	case KindXLSX:
		return xlsx.NewParser(xlsx.FromConfigOptions(opt)), nil
	}
	return nil, fmt.Errorf("%w: parser kind %q", ErrUnsupportedFormat, kind)
}

func csvOptions(o config.Options) pcsv.Options {
	return pcsv.Options{
		Comma:     o.Rune("comma", ','),
		TrimSpace: o.Bool("trim_space", true),
		HeaderMap: o.StringMap("header_map"),
		LogLimit:  o.Int("log_limit", 0),
	}
}
