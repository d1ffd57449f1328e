package usecase

import (
	"testing"
	"time"

	"goaltracker/utils"

	"github.com/stretchr/testify/require"
)

func d(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := utils.ParseDate(s)
	require.NoError(t, err)
	return v
}

func ds(t *testing.T, values ...string) []time.Time {
	t.Helper()
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		out = append(out, d(t, v))
	}
	return out
}

func formatAll(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, v := range dates {
		out = append(out, utils.FormatDate(v))
	}
	return out
}
