package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/report"
)

// ReadJSON decodes a report from r.
//
// ReadJSON returns an error if the JSON is malformed or the report has no
// lens history. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*report.Report, error) {
	var rep report.Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode report")
	}
	if len(rep.History) == 0 {
		return nil, errors.New(errors.ErrCodeNoResults, "report has no lens history")
	}
	return &rep, nil
}

// ImportJSON reads a JSON report file at path.
func ImportJSON(path string) (*report.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
