package transform

import (
	"safetyhub/domain/table"
)

// Options selects the transforms applied by Process.
type Options struct {
	Clean             bool `json:"clean"`
	Normalize         bool `json:"normalize"`
	EncodeCategorical bool `json:"encode_categorical"`
}

// Result is the processed table together with its statistics record.
type Result struct {
	Data       *table.Table `json:"data"`
	Statistics *Summary     `json:"statistics"`
}

// Process applies the enabled transforms in clean, normalize, encode order and
// summarizes the output.
func Process(t *table.Table, opts Options) (*Result, error) {
	out := t
	var err error

	if opts.Clean {
		if out, err = Clean(out); err != nil {
			return nil, err
		}
	}
	if opts.Normalize {
		if out, err = Normalize(out); err != nil {
			return nil, err
		}
	}
	if opts.EncodeCategorical {
		if out, err = Encode(out); err != nil {
			return nil, err
		}
	}

	summary, err := Summarize(out)
	if err != nil {
		return nil, err
	}
	return &Result{Data: out, Statistics: summary}, nil
}
