package runner

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/hitcall/packages/apicall"
	"github.com/abdul-hamid-achik/hitcall/packages/response"
	"github.com/abdul-hamid-achik/hitcall/packages/suite"
)

// CheckFile parses a suite and builds every call against the suite's
// initial data without sending anything. Values saved by earlier calls are
// absent, so only the structure of each call is checked.
func (r *Runner) CheckFile(path string) (*suite.Suite, error) {
	s, err := suite.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	data := r.newAccumulator(s)
	r.magic.Seed(data)

	var errs []error
	for _, call := range s.Calls {
		d, err := apicall.Parse(call.Spec, apicall.Context{
			Data:   data,
			Config: apicall.Config{Defaults: r.config.Defaults},
		})
		if err == nil {
			err = response.Check(d)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", call.Name, err))
		}
	}
	return s, errors.Join(errs...)
}
