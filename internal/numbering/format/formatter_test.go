package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVoucherNumber(t *testing.T) {
	at := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		template string
		seq      int64
		want     string
	}{
		{"PAY-{SEQ6}", 101, "PAY-000101"},
		{"SAL/{YYYY}/{SEQ}", 42, "SAL/2025/42"},
		{"PUR{YY}{MM}{DD}-{SEQ4}", 7, "PUR250307-0007"},
		{"RCT-{SEQ2}", 12345, "RCT-12345"},
	}
	for _, tc := range cases {
		got, err := FormatVoucherNumber(tc.template, at, tc.seq)
		require.NoError(t, err, tc.template)
		assert.Equal(t, tc.want, got)
	}
}

func TestFormatVoucherNumberErrors(t *testing.T) {
	at := time.Now()

	_, err := FormatVoucherNumber("", at, 1)
	assert.Error(t, err)

	_, err = FormatVoucherNumber("PAY-{SEQ}", at, 0)
	assert.Error(t, err)

	_, err = FormatVoucherNumber("PAY-{SEQ}-{BRANCH}", at, 1)
	assert.Error(t, err)
}
