package errors

import (
	"io"
	"testing"
)

func TestResult(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"registered error": {
			err:      ErrNotFound,
			wantLog:  "not found",
			wantCode: ErrNotFound.code,
		},
		"wrapped registered error": {
			err:      Wrap(Wrap(ErrNotFound, "foo"), "bar"),
			wantLog:  "bar: foo: not found",
			wantCode: ErrNotFound.code,
		},
		"nil": {
			err:      nil,
			wantCode: SuccessCode,
		},
		"typed nil": {
			err:      (*Error)(nil),
			wantCode: SuccessCode,
		},
		"stdlib error is hidden": {
			err:      Wrap(io.EOF, "cannot read file"),
			wantLog:  "internal error",
			wantCode: 1,
		},
		"stdlib error in debug mode": {
			err:      Wrap(io.EOF, "cannot read file"),
			debug:    true,
			wantLog:  "cannot read file: EOF",
			wantCode: 1,
		},
		"custom coder": {
			err:      customErr{},
			wantLog:  "custom",
			wantCode: 999,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := Result(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want %d code, got %d", tc.wantCode, code)
			}
			if log != tc.wantLog {
				t.Errorf("want %q log, got %q", tc.wantLog, log)
			}
		})
	}
}

type customErr struct{}

func (customErr) Code() uint32 { return 999 }

func (customErr) Error() string { return "custom" }
