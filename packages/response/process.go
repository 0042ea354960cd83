package response

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitcall/packages/apicall"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// section is the decoded response section of a descriptor.
type section struct {
	save       SaveSpec
	assertions []Assertion
	status     []int
}

func parseSection(d *apicall.Descriptor) (*section, error) {
	sec := d.Section("response")

	rawSave, _ := sec.Get(KeySave)
	save, err := ParseSaveSpec(rawSave)
	if err != nil {
		return nil, fmt.Errorf("response.save: %w", err)
	}
	assertions, err := sectionAssertions(sec)
	if err != nil {
		return nil, err
	}
	status, err := d.ExpectedStatus()
	if err != nil {
		return nil, err
	}
	return &section{save: save, assertions: assertions, status: status}, nil
}

// Check decodes the response section of d without a response, returning
// the first malformed entry.
func Check(d *apicall.Descriptor) error {
	_, err := parseSection(d)
	return err
}

// Process applies the response section of d to rec: it saves the declared
// selections into data, then checks the status and every assertion.
func (i *Inspector) Process(d *apicall.Descriptor, rec *Record, data *value.Object) ([]Violation, error) {
	sec, err := parseSection(d)
	if err != nil {
		return nil, err
	}
	if err := Save(sec.save, rec, data); err != nil {
		return nil, err
	}
	return i.AssertAll(sec.assertions, rec, sec.status)
}
